package ingestion

import (
	"github.com/gin-gonic/gin"
	"github.com/socialdesk-lab/socialdesk/internal/core/storage"
)

type Service struct {
	ledger           storage.StatsLedger
	secret           string
	rejectUnverified bool
	maxBodySizeBytes int
}

// NewService creates the desk-side ingestion service.
//
// rejectUnverified selects the signature policy: when false (the default),
// submissions with a missing or failed signature are still persisted with
// signature_verified=false so the ledger stays complete; when true they are
// rejected with 401.
func NewService(ledger storage.StatsLedger, secret string, rejectUnverified bool, maxBodySizeMB int) *Service {
	if ledger == nil {
		panic("ingestion: ledger must not be nil")
	}
	if secret == "" {
		panic("ingestion: secret must not be empty")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		ledger:           ledger,
		secret:           secret,
		rejectUnverified: rejectUnverified,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/ingest/platform-stats", s.IngestHandler)
}
