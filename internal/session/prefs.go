package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/kv"
)

const defaultLanguage = "uz"

func langKey(subjectID string) string {
	return fmt.Sprintf("lang:%s", subjectID)
}

// Language returns the preferred display language for a guest or user,
// defaulting to Uzbek when unset or unreadable.
func (m *Manager) Language(ctx context.Context, subjectID string) string {
	data, err := m.kv.Get(ctx, langKey(subjectID))
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			m.log.WithError(err).Warn("language preference read failed, using default")
		}
		return defaultLanguage
	}
	if len(data) == 0 {
		return defaultLanguage
	}
	return string(data)
}

// SetLanguage stores the preference best-effort.
func (m *Manager) SetLanguage(ctx context.Context, subjectID, lang string) {
	if err := m.kv.Set(ctx, langKey(subjectID), []byte(lang)); err != nil {
		m.log.WithError(err).Warn("language preference persist failed, continuing")
	}
}
