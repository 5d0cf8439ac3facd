package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	httperr "github.com/socialdesk-lab/socialdesk/internal/core/errors"
	"github.com/socialdesk-lab/socialdesk/internal/core/signature"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
	"github.com/socialdesk-lab/socialdesk/internal/metrics"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgMissingFields  = "Missing required fields"
	msgBadSignature   = "Signature verification failed"
	msgPersistFailed  = "Failed to store stats"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles the signed stats webhook from the dupe platforms.
//
// The signature is verified over the raw received bytes and the result is
// stored as advisory metadata (signature_verified). Unless the service is
// configured with rejectUnverified, a failed or missing signature does not
// block persistence: the ledger favors a complete audit record.
func (s *Service) IngestHandler(c *gin.Context) {
	rawBody, payload, err := s.parsePayload(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if vErr := payload.Validate(); vErr != nil {
		slog.Warn("Payload validation failed", "error", vErr, "platform", payload.Platform)
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpMissingFieldsError,
			message:    msgMissingFields,
			details:    map[string]interface{}{"reason": vErr.Error()},
		})
		return
	}

	verified := false
	if sig := c.GetHeader("X-Signature"); sig != "" {
		verified = signature.Verify(rawBody, sig, s.secret)
	}
	if !verified && s.rejectUnverified {
		slog.Warn("Rejecting unverified submission",
			"platform", payload.Platform,
			"period_start", payload.PeriodStart,
		)
		writeError(c, &ingestionError{
			statusCode: http.StatusUnauthorized,
			errorType:  httperr.HttpSignatureRejectedError,
			message:    msgBadSignature,
		})
		return
	}

	slog.Info("Received platform stats",
		"platform", payload.Platform,
		"period_start", payload.PeriodStart,
		"period_end", payload.PeriodEnd,
		"top_posts", len(payload.TopKPosts),
		"signature_verified", verified,
		"payload_size", len(rawBody),
	)

	stored, err := s.persistStats(c, payload, verified)
	if err != nil {
		writeError(c, err)
		return
	}

	metrics.StatsIngested.WithLabelValues(payload.Platform, strconv.FormatBool(verified)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Ingested stats for %s: %d posts, %d top entries stored",
			payload.Platform, payload.Totals.TotalPosts, stored),
	})
}

// parsePayload reads the raw request body and decodes it into a StatsPayload.
// The raw bytes are returned alongside the decoded struct because signature
// verification must run over exactly what arrived on the wire.
func (s *Service) parsePayload(c *gin.Context) ([]byte, *v1.StatsPayload, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	rawBody, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(rawBody)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(rawBody), "max", maxBytes)
		return nil, nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	var payload v1.StatsPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(rawBody))
		return nil, nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	return rawBody, &payload, nil
}

// persistStats appends the submission to the ledger: one platform_stats row,
// then the attached top-content entries. A top-post insert failure is logged
// but does not roll back the totals row — totals-only ingestion beats losing
// the submission entirely. Returns how many top entries were stored.
func (s *Service) persistStats(c *gin.Context, payload *v1.StatsPayload, verified bool) (int, *ingestionError) {
	receivedAt := time.Now().UTC()

	rec := &storage.IngestedStats{
		ID:                uuid.NewString(),
		Platform:          payload.Platform,
		PeriodStart:       payload.PeriodStart,
		PeriodEnd:         payload.PeriodEnd,
		Totals:            payload.Totals,
		SignatureVerified: verified,
		ReceivedAt:        receivedAt,
	}

	if err := s.ledger.InsertPlatformStats(c.Request.Context(), rec); err != nil {
		slog.Error("Failed to store platform stats", "error", err, "platform", payload.Platform)
		return 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpStorageError,
			message:    msgPersistFailed,
		}
	}

	if len(payload.TopKPosts) == 0 {
		return 0, nil
	}

	records := make([]storage.TopPostRecord, 0, len(payload.TopKPosts))
	for _, post := range payload.TopKPosts {
		records = append(records, storage.TopPostRecord{
			Platform:   payload.Platform,
			PostID:     post.PostID,
			Views:      post.Views,
			Likes:      post.Likes,
			Comments:   post.Comments,
			ReceivedAt: receivedAt,
		})
	}

	if err := s.ledger.InsertTopPosts(c.Request.Context(), records); err != nil {
		slog.Error("Failed to store top posts, keeping totals row",
			"error", err,
			"platform", payload.Platform,
			"stats_id", rec.ID,
		)
		return 0, nil
	}

	return len(records), nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
