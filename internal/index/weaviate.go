package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"go.uber.org/zap"

	"github.com/spec-kit/ecomarket-assistant/internal/config"
	"github.com/spec-kit/ecomarket-assistant/internal/domain"
	apperrors "github.com/spec-kit/ecomarket-assistant/pkg/util/errorutil"
)

// Document chunk properties stored alongside the vector. Inventory chunks
// additionally carry the parsed product fields the matcher reads.
var chunkProperties = []string{
	"source", "source_type", "file_type",
	"producto_nombre", "categoria", "cantidad", "precio",
}

// WeaviateIndex adapts a Weaviate class to the Searcher port.
type WeaviateIndex struct {
	client *weaviate.Client
	class  string
	logger *zap.Logger
}

// NewWeaviateIndex connects to the configured Weaviate instance. An empty
// host returns (nil, nil) so callers can fall back to retrieval-less mode.
func NewWeaviateIndex(cfg config.WeaviateConfig, logger *zap.Logger) (*WeaviateIndex, error) {
	if cfg.Host == "" {
		logger.Warn("WEAVIATE_HOST not provided; similarity search disabled")
		return nil, nil
	}

	clientCfg := weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}

	logger.Info("connected to weaviate", zap.String("host", cfg.Host), zap.String("class", cfg.Class))
	return &WeaviateIndex{client: client, class: cfg.Class, logger: logger}, nil
}

// SimilaritySearch returns the k nearest chunks with their raw distances.
func (w *WeaviateIndex) SimilaritySearch(ctx context.Context, query string, k int) ([]domain.ScoredPassage, error) {
	fields := make([]graphql.Field, 0, len(chunkProperties)+2)
	fields = append(fields, graphql.Field{Name: "content"})
	for _, prop := range chunkProperties {
		fields = append(fields, graphql.Field{Name: prop})
	}
	fields = append(fields, graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}})

	nearText := w.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	result, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithNearText(nearText).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, apperrors.NewCapabilityUnavailable("similarity index", err)
	}
	if len(result.Errors) > 0 {
		return nil, apperrors.NewCapabilityUnavailable("similarity index",
			fmt.Errorf("graphql: %s", result.Errors[0].Message))
	}

	passages, err := decodePassages(result.Data, w.class)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("similarity search",
		zap.String("query", query),
		zap.Int("k", k),
		zap.Int("hits", len(passages)),
	)
	return passages, nil
}

// decodePassages turns a GraphQL Get response into scored passages, copying
// every chunk property into the passage metadata.
func decodePassages(data any, class string) ([]domain.ScoredPassage, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal weaviate response: %w", err)
	}

	var passages []domain.ScoredPassage
	for _, obj := range gjson.GetBytes(jsonBytes, "Get."+class).Array() {
		passage := domain.Passage{
			Content:  obj.Get("content").String(),
			Metadata: make(map[string]string, len(chunkProperties)),
		}
		for _, prop := range chunkProperties {
			// Non-inventory chunks return null for the product properties.
			if val := obj.Get(prop); val.Exists() && val.String() != "" {
				passage.Metadata[prop] = val.String()
			}
		}
		passages = append(passages, domain.ScoredPassage{
			Passage:  passage,
			Distance: obj.Get("_additional.distance").Float(),
		})
	}
	return passages, nil
}
