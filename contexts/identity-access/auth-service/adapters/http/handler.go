package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"kvorum/contexts/identity-access/auth-service/application/commands"
	"kvorum/contexts/identity-access/auth-service/domain/entities"
	httptransport "kvorum/contexts/identity-access/auth-service/transport/http"
)

// Handler maps transport DTOs onto use cases. HTTP status mapping lives in
// the platform server.
type Handler struct {
	Auth   commands.AuthUseCase
	Logger *slog.Logger
}

func (h Handler) RequestOtpHandler(ctx context.Context, req httptransport.RequestOtpRequest) (httptransport.RequestOtpResponse, error) {
	result, err := h.Auth.RequestOtp(ctx, req.Phone)
	if err != nil {
		return httptransport.RequestOtpResponse{}, err
	}
	return httptransport.RequestOtpResponse{
		Phone:     result.Phone,
		ExpiresAt: formatTime(result.ExpiresAt),
	}, nil
}

func (h Handler) VerifyOtpHandler(ctx context.Context, req httptransport.VerifyOtpRequest) (httptransport.SessionResponse, error) {
	session, err := h.Auth.VerifyOtp(ctx, req.Phone, req.Code)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return sessionResponse(session), nil
}

func (h Handler) ResolveTokenHandler(ctx context.Context, token string) (entities.Session, error) {
	return h.Auth.ResolveToken(ctx, token)
}

func (h Handler) ResolveSessionHandler(ctx context.Context, sessionID string) (entities.Session, error) {
	return h.Auth.ResolveSession(ctx, sessionID)
}

func sessionResponse(session entities.Session) httptransport.SessionResponse {
	return httptransport.SessionResponse{
		SessionID: session.SessionID,
		ExpiresAt: formatTime(session.ExpiresAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
