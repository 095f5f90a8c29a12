package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func newTestClient(t *testing.T, url string) Client {
	t.Helper()
	RegisterTestingT(t)
	client, err := NewOllama(nil, url, "llama3.1:8b", 5*time.Second)
	Expect(err).To(BeNil())
	return client
}

func TestGenerateSuccess(t *testing.T) {
	RegisterTestingT(t)

	var gotPath, gotContentType string
	var gotRequest GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		Expect(json.NewDecoder(r.Body).Decode(&gotRequest)).To(BeNil())
		_, _ = w.Write([]byte(`{"model":"llama3.1:8b","response":"hello","done":true,"context":[1,2,3]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	res, err := client.Generate(context.Background(), "hi")
	Expect(err).To(BeNil())
	Expect(res).To(Equal("hello"))

	Expect(gotPath).To(Equal("/api/generate"))
	Expect(gotContentType).To(Equal("application/json"))
	Expect(gotRequest.Model).To(Equal("llama3.1:8b"))
	Expect(gotRequest.Prompt).To(Equal("hi"))
	Expect(gotRequest.Stream).To(BeFalse())
}

func TestGenerateIncompleteResponse(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"partial","done":false}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	res, err := client.Generate(context.Background(), "hi")
	Expect(res).To(BeEmpty())

	var genErr *GenerationError
	Expect(errors.As(err, &genErr)).To(BeTrue())
	Expect(genErr.Message).To(Equal("incomplete response"))
}

func TestGenerateMalformedResponse(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{this is not json`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "hi")

	var genErr *GenerationError
	Expect(errors.As(err, &genErr)).To(BeTrue())
	Expect(genErr.Message).To(ContainSubstring("unmarshal"))
	Expect(genErr.Cause).NotTo(BeNil())
}

func TestGenerateUnexpectedStatus(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "hi")

	var genErr *GenerationError
	Expect(errors.As(err, &genErr)).To(BeTrue())
	Expect(genErr.Message).To(ContainSubstring("404"))
}

func TestGenerateTimeout(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		_, _ = w.Write([]byte(`{"response":"too late","done":true}`))
	}))
	defer server.Close()

	client, err := NewOllama(nil, server.URL, "llama3.1:8b", 100*time.Millisecond)
	Expect(err).To(BeNil())

	_, err = client.Generate(context.Background(), "hi")

	var transportErr *TransportError
	Expect(errors.As(err, &transportErr)).To(BeTrue())
}

func TestGenerateConnectionRefused(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url)
	_, err := client.Generate(context.Background(), "hi")

	var transportErr *TransportError
	Expect(errors.As(err, &transportErr)).To(BeTrue())
	Expect(transportErr.Cause).NotTo(BeNil())
}

func TestGenerateIdempotent(t *testing.T) {
	RegisterTestingT(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(BeNil())
		resp := GenerateResponse{Response: "echo: " + req.Prompt, Done: true}
		Expect(json.NewEncoder(w).Encode(resp)).To(BeNil())
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	first, err := client.Generate(context.Background(), "same prompt")
	Expect(err).To(BeNil())
	second, err := client.Generate(context.Background(), "same prompt")
	Expect(err).To(BeNil())
	Expect(second).To(Equal(first))
	Expect(first).To(Equal("echo: same prompt"))
}

func TestNewOllamaValidation(t *testing.T) {
	RegisterTestingT(t)

	_, err := NewOllama(nil, "", "llama3.1:8b", time.Minute)
	Expect(err).NotTo(BeNil())

	_, err = NewOllama(nil, DefaultOllamaURL, "", time.Minute)
	Expect(err).NotTo(BeNil())

	_, err = NewOllama(nil, DefaultOllamaURL, "llama3.1:8b", 0)
	Expect(err).NotTo(BeNil())

	_, err = NewOllama(nil, DefaultOllamaURL, "llama3.1:8b", -time.Second)
	Expect(err).NotTo(BeNil())

	client, err := NewOllama(nil, DefaultOllamaURL, "llama3.1:8b", time.Minute)
	Expect(err).To(BeNil())
	Expect(client).NotTo(BeNil())
}
