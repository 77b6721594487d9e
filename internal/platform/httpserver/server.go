package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	signingservice "kvorum/contexts/governance/signing-service"
	signingerrors "kvorum/contexts/governance/signing-service/domain/errors"
	signinghttp "kvorum/contexts/governance/signing-service/transport/http"
	votingengine "kvorum/contexts/governance/voting-engine"
	votingerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	votinghttp "kvorum/contexts/governance/voting-engine/transport/http"
	authservice "kvorum/contexts/identity-access/auth-service"
	autherrors "kvorum/contexts/identity-access/auth-service/domain/errors"
	authentities "kvorum/contexts/identity-access/auth-service/domain/entities"
	authhttp "kvorum/contexts/identity-access/auth-service/transport/http"
	"kvorum/internal/shared/validation"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "kvorum/internal/platform/httpserver/docs"
)

// SessionCookieName carries the opaque session handle. The server also
// accepts the same handle as a bearer token.
const SessionCookieName = "kvorum_session"

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	voting  votingengine.Module
	signing signingservice.Module
	auth    authservice.Module
}

func New(
	voting votingengine.Module,
	signing signingservice.Module,
	auth authservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		voting:  voting,
		signing: signing,
		auth:    auth,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/auth/v1/otp/request", s.handleRequestOtp)
	s.mux.HandleFunc("POST /api/auth/v1/otp/verify", s.handleVerifyOtp)

	s.mux.HandleFunc("GET /api/vote/v1/sheets/{token}", s.handleVoterBallotView)
	s.mux.HandleFunc("POST /api/vote/v1/sheets/{token}/ballot", s.handleVoterSubmitBallot)

	s.mux.HandleFunc("POST /api/protocols/v1", s.handleCreateProtocol)
	s.mux.HandleFunc("POST /api/protocols/v1/{protocol_id}/questions", s.handleAddQuestion)
	s.mux.HandleFunc("POST /api/protocols/v1/{protocol_id}/open", s.handleOpenVoting)

	s.mux.HandleFunc("POST /api/sheets/v1/{sheet_id}/close", s.handleCloseSheet)
	s.mux.HandleFunc("GET /api/sheets/v1/{sheet_id}/tally", s.handleSheetTally)
	s.mux.HandleFunc("GET /api/sheets/v1/{sheet_id}/files/{kind}", s.handleSheetArtifact)
	s.mux.HandleFunc("GET /api/sheets/v1/{sheet_id}/document", s.handleSheetDocument)
}

// Auth endpoints

func (s *Server) handleRequestOtp(w http.ResponseWriter, r *http.Request) {
	var req authhttp.RequestOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.auth.Handler.RequestOtpHandler(r.Context(), req)
	if err != nil {
		s.writeAuthDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req authhttp.VerifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.auth.Handler.VerifyOtpHandler(r.Context(), req)
	if err != nil {
		s.writeAuthDomainError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    resp.SessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, resp)
}

// Voter endpoints, scoped by public sheet token

func (s *Server) handleVoterBallotView(w http.ResponseWriter, r *http.Request) {
	session, ok := s.resolveVoterToken(w, r)
	if !ok {
		return
	}
	resp, err := s.voting.Handler.OwnerBallotHandler(r.Context(), session.SheetID, session.OwnerID)
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterSubmitBallot(w http.ResponseWriter, r *http.Request) {
	session, ok := s.resolveVoterToken(w, r)
	if !ok {
		return
	}
	var req votinghttp.SubmitBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}
	resp, err := s.voting.Handler.SubmitBallotHandler(r.Context(), session.SheetID, session.OwnerID, req)
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Organizer endpoints, guarded by phone-verified sessions

func (s *Server) handleCreateProtocol(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	var req votinghttp.CreateProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}
	resp, err := s.voting.Handler.CreateProtocolHandler(r.Context(), req)
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	var req votinghttp.AddQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", nil)
		return
	}
	resp, err := s.voting.Handler.AddQuestionHandler(r.Context(), r.PathValue("protocol_id"), req)
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	resp, err := s.voting.Handler.OpenVotingHandler(r.Context(), r.PathValue("protocol_id"))
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseSheet(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	resp, err := s.voting.Handler.CloseSheetHandler(r.Context(), r.PathValue("sheet_id"))
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSheetTally(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	resp, err := s.voting.Handler.SheetTallyHandler(r.Context(), r.PathValue("sheet_id"))
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSheetArtifact(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	artifact, err := s.voting.Handler.GetArtifactHandler(r.Context(), r.PathValue("sheet_id"), r.PathValue("kind"))
	if err != nil {
		s.writeVotingDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", contentDisposition(artifact.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// contentDisposition builds an attachment header with the file name quoted
// and escaped. Artifact names embed the protocol number, which is free-form
// operator input.
func contentDisposition(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}

func (s *Server) handleSheetDocument(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requirePhoneSession(w, r); !ok {
		return
	}
	resp, err := s.signing.Handler.GetDocumentHandler(r.Context(), r.PathValue("sheet_id"))
	if err != nil {
		s.writeSigningDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Session plumbing

func (s *Server) resolveVoterToken(w http.ResponseWriter, r *http.Request) (authentities.Session, bool) {
	session, err := s.auth.Handler.ResolveTokenHandler(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeAuthDomainError(w, err)
		return authentities.Session{}, false
	}
	return session, true
}

func (s *Server) requirePhoneSession(w http.ResponseWriter, r *http.Request) (authentities.Session, bool) {
	sessionID := readSessionID(r)
	if sessionID == "" {
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return authentities.Session{}, false
	}
	session, err := s.auth.Handler.ResolveSessionHandler(r.Context(), sessionID)
	if err != nil {
		s.writeAuthDomainError(w, err)
		return authentities.Session{}, false
	}
	if session.Kind != authentities.SessionKindPhone {
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return authentities.Session{}, false
	}
	return session, true
}

func readSessionID(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(after)
	}
	return ""
}

// Error mapping

func (s *Server) writeVotingDomainError(w http.ResponseWriter, err error) {
	if verr, ok := validation.AsError(err); ok {
		violations := make([]votinghttp.FieldViolation, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			violations = append(violations, votinghttp.FieldViolation{
				Field:   v.Field,
				Message: v.Message,
			})
		}
		writeVotingError(w, http.StatusBadRequest, "validation_failed", "one or more fields are invalid", violations)
		return
	}

	switch {
	case errors.Is(err, votingerrors.ErrProtocolNotFound),
		errors.Is(err, votingerrors.ErrSheetNotFound),
		errors.Is(err, votingerrors.ErrAssociationNotFound),
		errors.Is(err, votingerrors.ErrOwnerNotFound),
		errors.Is(err, votingerrors.ErrUnknownQuestion),
		errors.Is(err, votingerrors.ErrUnknownArtifact):
		writeVotingError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, votingerrors.ErrNotYetAvailable):
		writeVotingError(w, http.StatusNotFound, "not_yet_available", err.Error(), nil)
	case errors.Is(err, votingerrors.ErrProtocolNotDraft),
		errors.Is(err, votingerrors.ErrSheetClosed),
		errors.Is(err, votingerrors.ErrSheetExpired),
		errors.Is(err, votingerrors.ErrEmptyAgenda),
		errors.Is(err, votingerrors.ErrDuplicateOrderNumber),
		errors.Is(err, votingerrors.ErrConflict):
		writeVotingError(w, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		s.logInternal("voting", err)
		writeVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func (s *Server) writeSigningDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, signingerrors.ErrDocumentNotFound):
		writeSigningError(w, http.StatusNotFound, "not_yet_available", "document not yet available")
	case errors.Is(err, signingerrors.ErrProviderUnavailable):
		writeSigningError(w, http.StatusServiceUnavailable, "provider_unavailable", "signature provider temporarily unavailable")
	default:
		s.logInternal("signing", err)
		writeSigningError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) writeAuthDomainError(w http.ResponseWriter, err error) {
	if verr, ok := validation.AsError(err); ok {
		message := "invalid request"
		if len(verr.Violations) > 0 {
			message = verr.Violations[0].Field + " " + verr.Violations[0].Message
		}
		writeAuthError(w, http.StatusBadRequest, "validation_failed", message)
		return
	}

	switch {
	case errors.Is(err, autherrors.ErrOtpRejected),
		errors.Is(err, autherrors.ErrTokenRejected),
		errors.Is(err, autherrors.ErrSessionRejected):
		writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	default:
		s.logInternal("auth", err)
		writeAuthError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) logInternal(surface string, err error) {
	s.logger.Error("request failed",
		"event", "http_internal_error",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"surface", surface,
		"error", err.Error(),
	)
}

func writeVotingError(w http.ResponseWriter, status int, code, message string, violations []votinghttp.FieldViolation) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:       code,
		Message:    message,
		Violations: violations,
	})
}

func writeSigningError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, signinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, authhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
