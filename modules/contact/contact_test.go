package contact_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardiksavani/portfolio-backend/modules/contact"
	"github.com/hardiksavani/portfolio-backend/pkg/mailer"
	"github.com/hardiksavani/portfolio-backend/pkg/ratelimit"
	"github.com/hardiksavani/portfolio-backend/pkg/submissionlog"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

type failingRecorder struct{}

func (failingRecorder) Record(ctx context.Context, entry submissionlog.Entry) error {
	return errors.New("disk full")
}

type testPipeline struct {
	service  *contact.Service
	sender   *fakeSender
	recorder *submissionlog.MemoryRecorder
	store    *ratelimit.MemoryStore
}

func (p *testPipeline) close() {
	if p.store != nil {
		p.store.Close()
	}
}

func newTestPipeline(t *testing.T, mutate func(*contact.Config, *contact.Deps)) *testPipeline {
	t.Helper()

	store := ratelimit.NewMemoryStore()
	limiter, err := ratelimit.NewSlidingWindow(store, 5, time.Hour)
	require.NoError(t, err)

	sender := &fakeSender{}
	recorder := submissionlog.NewMemoryRecorder()

	cfg := contact.Config{
		ToEmail:           "owner@example.com",
		FromEmail:         "noreply@example.com",
		FromName:          "Portfolio Contact Form",
		SubjectPrefix:     "[Portfolio Contact] ",
		AllowedOrigins:    []string{"https://example.com"},
		RateLimitRequests: 5,
		RateLimitWindow:   time.Hour,
	}
	deps := contact.Deps{
		Limiter:  limiter,
		Sender:   sender,
		Recorder: recorder,
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}

	service, err := contact.NewService(cfg, deps)
	require.NoError(t, err)

	p := &testPipeline{service: service, sender: sender, recorder: recorder, store: store}
	t.Cleanup(p.close)
	return p
}

func postJSON(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "test-agent/1.0")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you."}`

func TestSubmissionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid submission accepted", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		handler := p.service.Handle()

		rec := postJSON(handler, validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"Thank you for your message! I will get back to you soon."}`, rec.Body.String())

		sent := p.sender.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "owner@example.com", sent[0].To)
		assert.Equal(t, "[Portfolio Contact] Project inquiry", sent[0].Subject)
		assert.Equal(t, "jane@example.com", sent[0].ReplyTo)
		assert.Equal(t, "Jane Doe", sent[0].ReplyToName)
		assert.Contains(t, sent[0].Body, "Name: Jane Doe")
		assert.Contains(t, sent[0].Body, "IP Address: 203.0.113.7")
		assert.Contains(t, sent[0].Body, "User Agent: test-agent/1.0")
		assert.NotContains(t, sent[0].Body, "Budget:", "empty budget is omitted from the email body")

		entries := p.recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "jane@example.com", entries[0].Email)
		assert.Equal(t, submissionlog.BudgetNotSpecified, entries[0].Budget)
		assert.Equal(t, len("I would like to discuss a new project with you."), entries[0].MessageLength)
	})

	t.Run("all validation errors reported at once", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"A","email":"not-an-email","subject":"Hi","message":"short"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Name must be at least 2 characters long, Please enter a valid email address, Subject must be at least 5 characters long, Message must be at least 10 characters long"}`, rec.Body.String())
		assert.Empty(t, p.sender.messages(), "invalid submissions are never dispatched")
		assert.Empty(t, p.recorder.Entries(), "invalid submissions are never logged")
	})

	t.Run("empty field reports only the required error", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you."}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Name is required"}`, rec.Body.String())
	})

	t.Run("spam content rejected", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"You should buy now before the offer expires."}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Your message appears to be spam"}`, rec.Body.String())
		assert.Empty(t, p.sender.messages())
	})

	t.Run("repeated characters rejected", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"Heyyyyyyyyyyy I have a project for you."}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Your message appears to be spam"}`, rec.Body.String())
	})

	t.Run("form encoded body accepted", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		form := "name=Jane+Doe&email=jane%40example.com&subject=Project+inquiry&message=I+would+like+to+discuss+a+new+project+with+you."
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()
		p.service.Handle().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, p.sender.messages(), 1)
	})

	t.Run("GET not allowed", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		p.service.Handle().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Method not allowed"}`, rec.Body.String())
	})

	t.Run("OPTIONS preflight returns empty body", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		p.service.Handle().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("security headers always present", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), validBody)

		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	})

	t.Run("unlisted origin gets no CORS header", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(validBody))
		req.Header.Set("Origin", "https://evil.example.net")
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()
		p.service.Handle().ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("sixth request within window rate limited", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		handler := p.service.Handle()

		for range 5 {
			rec := postJSON(handler, validBody)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := postJSON(handler, validBody)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Too many requests. Please try again later."}`, rec.Body.String())
		assert.Len(t, p.sender.messages(), 5, "the limited request never reaches dispatch")
	})

	t.Run("send failure returns generic message", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			deps.Sender = &fakeSender{err: errors.New("smtp: connection refused")}
		})
		rec := postJSON(p.service.Handle(), validBody)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Failed to send email. Please try again later."}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "smtp", "infrastructure detail must not leak")
		assert.Empty(t, p.recorder.Entries())
	})

	t.Run("log failure does not fail the submission", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			deps.Recorder = failingRecorder{}
		})
		rec := postJSON(p.service.Handle(), validBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, p.sender.messages(), 1)
	})

	t.Run("budget is included when provided", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","budget":"$5k-$10k","message":"I would like to discuss a new project with you."}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, p.sender.messages(), 1)
		assert.Contains(t, p.sender.messages()[0].Body, "Budget: $5k-$10k")

		entries := p.recorder.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "$5k-$10k", entries[0].Budget)
	})

	t.Run("line breaks in subject cannot reach email headers", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"Jane Doe","email":"jane@example.com","subject":"Hello\r\nBcc: attacker@evil.example","message":"I would like to discuss a new project with you."}`)

		require.Equal(t, http.StatusOK, rec.Code)
		sent := p.sender.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "[Portfolio Contact] Hello  Bcc: attacker@evil.example", sent[0].Subject)
		assert.NotContains(t, sent[0].Subject, "\r")
		assert.NotContains(t, sent[0].Subject, "\n")
		assert.NotContains(t, sent[0].ReplyToName, "\n")
	})

	t.Run("html in fields is escaped before dispatch", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), `{"name":"Jane <script>","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you."}`)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, p.sender.messages(), 1)
		assert.Contains(t, p.sender.messages()[0].Body, "Name: Jane &lt;script&gt;")
	})
}

func TestRecaptchaVerification(t *testing.T) {
	t.Parallel()

	t.Run("missing token rejected when enabled", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			cfg.RecaptchaSecret = "secret"
			deps.Verifier = contact.NewRecaptchaVerifier("secret")
		})
		rec := postJSON(p.service.Handle(), validBody)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Please complete the reCAPTCHA verification"}`, rec.Body.String())
		assert.Empty(t, p.sender.messages())
	})

	t.Run("rejected token fails verification", func(t *testing.T) {
		t.Parallel()

		verifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "secret", r.Form.Get("secret"))
			assert.Equal(t, "bad-token", r.Form.Get("response"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		}))
		t.Cleanup(verifyServer.Close)

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			cfg.RecaptchaSecret = "secret"
			deps.Verifier = contact.NewRecaptchaVerifier("secret", contact.WithVerifyEndpoint(verifyServer.URL))
		})
		body := `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you.","recaptcha_response":"bad-token"}`
		rec := postJSON(p.service.Handle(), body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"reCAPTCHA verification failed"}`, rec.Body.String())
	})

	t.Run("accepted token proceeds to dispatch", func(t *testing.T) {
		t.Parallel()

		verifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		t.Cleanup(verifyServer.Close)

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			cfg.RecaptchaSecret = "secret"
			deps.Verifier = contact.NewRecaptchaVerifier("secret", contact.WithVerifyEndpoint(verifyServer.URL))
		})
		body := `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you.","recaptcha_response":"good-token"}`
		rec := postJSON(p.service.Handle(), body)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, p.sender.messages(), 1)
	})

	t.Run("verification service outage is an internal error", func(t *testing.T) {
		t.Parallel()

		verifyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		t.Cleanup(verifyServer.Close)

		p := newTestPipeline(t, func(cfg *contact.Config, deps *contact.Deps) {
			cfg.RecaptchaSecret = "secret"
			deps.Verifier = contact.NewRecaptchaVerifier("secret", contact.WithVerifyEndpoint(verifyServer.URL))
		})
		body := `{"name":"Jane Doe","email":"jane@example.com","subject":"Project inquiry","message":"I would like to discuss a new project with you.","recaptcha_response":"token"}`
		rec := postJSON(p.service.Handle(), body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Internal server error. Please try again later."}`, rec.Body.String())
		assert.Empty(t, p.sender.messages())
	})

	t.Run("disabled verifier ignores token", func(t *testing.T) {
		t.Parallel()

		p := newTestPipeline(t, nil)
		rec := postJSON(p.service.Handle(), validBody)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNewService(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	limiter, err := ratelimit.NewSlidingWindow(store, 5, time.Hour)
	require.NoError(t, err)

	cfg := contact.Config{ToEmail: "owner@example.com"}

	t.Run("requires limiter", func(t *testing.T) {
		_, err := contact.NewService(cfg, contact.Deps{Sender: &fakeSender{}})
		assert.Error(t, err)
	})

	t.Run("requires sender", func(t *testing.T) {
		_, err := contact.NewService(cfg, contact.Deps{Limiter: limiter})
		assert.Error(t, err)
	})

	t.Run("requires recipient", func(t *testing.T) {
		_, err := contact.NewService(contact.Config{}, contact.Deps{Limiter: limiter, Sender: &fakeSender{}})
		assert.Error(t, err)
	})
}
