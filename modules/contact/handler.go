package contact

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"

	"github.com/hardiksavani/portfolio-backend/pkg/clientip"
	"github.com/hardiksavani/portfolio-backend/pkg/logger"
)

// maxBodySize bounds the request body read. The largest legal submission is
// well under this.
const maxBodySize = 64 << 10

// handleSubmit is the single HTTP endpoint of the pipeline. Header and
// method handling mirror a strict form endpoint: JSON only, no sniffing,
// no framing, CORS echoed solely for allow-listed origins.
func (s *Service) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.writeSecurityHeaders(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, ErrMethodNotAllowed)
		return
	}

	ctx := r.Context()
	ip := clientip.GetIPFromContext(ctx)
	if ip == "" {
		ip = clientip.GetIP(r)
	}

	// Rate limiting runs before the body is parsed.
	if err := s.CheckRateLimit(ctx, ip); err != nil {
		s.writeError(w, asError(err))
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		s.log.WarnContext(ctx, "submission body unreadable", logger.ClientIP(ip), logger.Error(err))
		s.writeError(w, asError(err))
		return
	}

	meta := RequestMeta{
		Host:      r.Host,
		ClientIP:  ip,
		UserAgent: r.UserAgent(),
	}

	message, err := s.Submit(ctx, meta, req)
	if err != nil {
		s.writeError(w, asError(err))
		return
	}

	s.writeResponse(w, http.StatusOK, Response{Success: true, Message: message})
}

// decodeRequest accepts either a JSON object or urlencoded form fields.
// A JSON body wins when it parses; anything else is treated as a form.
func decodeRequest(r *http.Request) (SubmissionRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return SubmissionRequest{}, internalError(err)
	}

	var req SubmissionRequest
	if len(body) > 0 && json.Unmarshal(body, &req) == nil {
		return req, nil
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return SubmissionRequest{}, internalError(err)
	}
	return SubmissionRequest{
		Name:              values.Get("name"),
		Email:             values.Get("email"),
		Subject:           values.Get("subject"),
		Budget:            values.Get("budget"),
		Message:           values.Get("message"),
		RecaptchaResponse: values.Get("g-recaptcha-response"),
	}, nil
}

func (s *Service) writeSecurityHeaders(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")

	if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(s.cfg.AllowedOrigins, origin) {
		h.Set("Access-Control-Allow-Origin", origin)
	}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Service) writeError(w http.ResponseWriter, err *Error) {
	s.writeResponse(w, err.Status, Response{Success: false, Message: err.Message})
}

func (s *Service) writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("response write failed", logger.Error(err))
	}
}
