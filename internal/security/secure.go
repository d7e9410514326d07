package security

import (
	"context"
	"fmt"
	"time"

	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/model"
)

// SecureManager decorates the memory service with privacy screening,
// sanitization, and transparent encryption of content and context. With a
// nil cipher it degrades to screening and masking only.
type SecureManager struct {
	base   *memory.Manager
	cipher *Cipher
	policy *Policy
}

// NewSecureManager wraps base with the given policy and optional cipher.
func NewSecureManager(base *memory.Manager, cipher *Cipher, policy *Policy) *SecureManager {
	if policy == nil {
		policy = NewPolicy(nil, 0, false)
	}
	return &SecureManager{base: base, cipher: cipher, policy: policy}
}

// Store screens, sanitizes and encrypts the request before delegating.
func (s *SecureManager) Store(ctx context.Context, req memory.StoreRequest) (int64, error) {
	if err := s.policy.Screen("content", req.Content); err != nil {
		return 0, err
	}
	if err := s.policy.Screen("context", req.Context); err != nil {
		return 0, err
	}

	req.Content = s.policy.Sanitize(req.Content)
	req.Context = s.policy.Sanitize(req.Context)

	if s.cipher != nil {
		var err error
		if req.Content, err = s.cipher.EncryptString(req.Content); err != nil {
			return 0, fmt.Errorf("encrypt content: %w", err)
		}
		if req.Context, err = s.cipher.EncryptString(req.Context); err != nil {
			return 0, fmt.Errorf("encrypt context: %w", err)
		}
	}

	return s.base.Store(ctx, req)
}

// GetByID fetches and decrypts a memory. Returns nil when the id does not
// exist.
func (s *SecureManager) GetByID(ctx context.Context, id int64) (*model.Memory, error) {
	mem, err := s.base.GetByID(ctx, id)
	if err != nil || mem == nil {
		return mem, err
	}
	if s.cipher != nil {
		if mem.Content, err = s.cipher.DecryptString(mem.Content); err != nil {
			return nil, fmt.Errorf("decrypt content: %w", err)
		}
		if mem.Context, err = s.cipher.DecryptString(mem.Context); err != nil {
			return nil, fmt.Errorf("decrypt context: %w", err)
		}
	}
	return mem, nil
}

// PurgeExpired deletes memories older than the retention window and returns
// the number removed. A zero retention window is a no-op.
func (s *SecureManager) PurgeExpired(ctx context.Context) (int, error) {
	days := s.policy.RetentionDays()
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	all, err := s.base.List(ctx, "", 0, 0)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, mem := range all {
		if mem.CreatedAt.Before(cutoff) {
			ok, err := s.base.Delete(ctx, mem.ID)
			if err != nil {
				return purged, err
			}
			if ok {
				purged++
			}
		}
	}
	return purged, nil
}

// Status describes the active security settings.
type Status struct {
	EncryptionEnabled bool `json:"encryption_enabled"`
	BlockedKeywords   int  `json:"blocked_keywords"`
	RetentionDays     int  `json:"retention_days"`
}

// Status reports the current security configuration.
func (s *SecureManager) Status() Status {
	return Status{
		EncryptionEnabled: s.cipher != nil,
		BlockedKeywords:   s.policy.BlockedKeywordCount(),
		RetentionDays:     s.policy.RetentionDays(),
	}
}
