package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// Service manages short-lived conversational memory per session. Values
// expire after the configured TTL; re-storing a key re-arms its expiry.
type Service struct {
	store  repository.SessionMemoryStore
	tracer *observability.Tracer
	ttl    time.Duration
}

// NewService wires the memory service. ttl applies to every stored value.
func NewService(store repository.SessionMemoryStore, tracer *observability.Tracer, ttl time.Duration) *Service {
	return &Service{store: store, tracer: tracer, ttl: ttl}
}

// Store saves a single fact for the session.
func (s *Service) Store(ctx context.Context, traceID, sessionID, key, value string) error {
	if sessionID == "" || key == "" {
		return apperrors.NewInputMalformed("session_id y memory_key son requeridos", nil)
	}
	if value == "" {
		return apperrors.NewInputMalformed("memory_value no puede estar vacío", nil)
	}
	if err := s.store.Store(ctx, sessionID, key, value, s.ttl); err != nil {
		s.tracer.Error(traceID, "MEMORY_STORE_ERROR", fmt.Sprintf("Error almacenando memoria: %s", err),
			map[string]any{"session_id": sessionID, "memory_key": key})
		return err
	}
	s.tracer.Info(traceID, "MEMORY_STORED", fmt.Sprintf("Memoria almacenada: %s", key),
		map[string]any{"session_id": sessionID, "memory_key": key, "ttl_minutes": int(s.ttl.Minutes())})
	return nil
}

// Retrieve returns one fact for the session, reporting whether it was found.
func (s *Service) Retrieve(ctx context.Context, traceID, sessionID, key string) (string, bool, error) {
	if sessionID == "" {
		return "", false, apperrors.NewInputMalformed("session_id es requerido", nil)
	}
	value, found, err := s.store.Get(ctx, sessionID, key)
	if err != nil {
		s.tracer.Error(traceID, "MEMORY_RETRIEVE_ERROR", fmt.Sprintf("Error recuperando memoria: %s", err),
			map[string]any{"session_id": sessionID, "memory_key": key})
		return "", false, err
	}
	if found {
		s.tracer.Info(traceID, "MEMORY_RETRIEVED", fmt.Sprintf("Memoria recuperada: %s", key),
			map[string]any{"session_id": sessionID, "memory_key": key})
	}
	return value, found, nil
}

// RetrieveAll returns every live fact for the session.
func (s *Service) RetrieveAll(ctx context.Context, traceID, sessionID string) (map[string]string, error) {
	if sessionID == "" {
		return nil, apperrors.NewInputMalformed("session_id es requerido", nil)
	}
	memories, err := s.store.GetAll(ctx, sessionID)
	if err != nil {
		s.tracer.Error(traceID, "MEMORY_RETRIEVE_ERROR", fmt.Sprintf("Error recuperando memoria: %s", err),
			map[string]any{"session_id": sessionID})
		return nil, err
	}
	if len(memories) > 0 {
		s.tracer.Info(traceID, "MEMORY_RETRIEVED_ALL", fmt.Sprintf("Memorias recuperadas: %d item(s)", len(memories)),
			map[string]any{"session_id": sessionID, "count": len(memories)})
	}
	return memories, nil
}

// Clear removes one fact, or every fact of the session when key is empty.
func (s *Service) Clear(ctx context.Context, traceID, sessionID, key string) (bool, error) {
	if sessionID == "" {
		return false, apperrors.NewInputMalformed("session_id es requerido", nil)
	}
	var (
		removed bool
		err     error
	)
	if key != "" {
		removed, err = s.store.Delete(ctx, sessionID, key)
	} else {
		var n int
		n, err = s.store.DeleteAll(ctx, sessionID)
		removed = n > 0
	}
	if err != nil {
		s.tracer.Error(traceID, "MEMORY_DELETE_ERROR", fmt.Sprintf("Error eliminando memoria: %s", err),
			map[string]any{"session_id": sessionID, "memory_key": key})
		return false, err
	}
	if removed {
		s.tracer.Info(traceID, "MEMORY_DELETED", "Memoria eliminada",
			map[string]any{"session_id": sessionID, "memory_key": key})
	}
	return removed, nil
}

// Extraction patterns per memory key, tried in order. First match wins per
// key; the captured group is what gets stored.
var userInfoPatterns = map[string][]*regexp.Regexp{
	"nombre": {
		regexp.MustCompile(`(?i)(?:me llamo|mi nombre es|soy) ([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?: [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*)`),
		regexp.MustCompile(`(?i)nombre ([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?: [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*)`),
	},
	"email": {
		regexp.MustCompile(`(\S+@\S+\.\S+)`),
	},
	"telefono": {
		regexp.MustCompile(`(\+?[0-9]{1,3}[-.\s]?)?[0-9]{3,4}[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
	},
}

// keyOrder fixes the iteration order so traces are stable across runs.
var keyOrder = []string{"nombre", "email", "telefono"}

// ExtractUserInfo pulls contact details out of a query and stores each one
// under the session. A fresh session id is minted when none is given.
func (s *Service) ExtractUserInfo(ctx context.Context, traceID, sessionID, query string) (string, map[string]string) {
	if sessionID == "" {
		sessionID = "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	extracted := map[string]string{}
	for _, key := range keyOrder {
		for _, pattern := range userInfoPatterns[key] {
			m := pattern.FindStringSubmatch(query)
			if m == nil {
				continue
			}
			value := m[0]
			if len(m) > 1 && m[1] != "" && key != "telefono" {
				value = m[1]
			}
			extracted[key] = value
			_ = s.Store(ctx, traceID, sessionID, key, value)
			break
		}
	}
	return sessionID, extracted
}

// ContextBlock renders the session's memory as a block to append to the
// user's query before analysis. Empty when the session holds nothing.
func (s *Service) ContextBlock(ctx context.Context, traceID, sessionID string) string {
	memories, err := s.RetrieveAll(ctx, traceID, sessionID)
	if err != nil || len(memories) == 0 {
		return ""
	}

	keys := make([]string, 0, len(memories))
	for k := range memories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, memories[k]))
	}
	return "\n\nContexto de la sesión:\n" + strings.Join(parts, "\n")
}
