package vectorindex

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"

	"github.com/hupe1980/fashionagent/core"
)

// Field names of catalog documents in the OpenSearch index.
const (
	VectorField = "vector_field"
	ImageField  = "image_b64"
)

// ServerlessService is the SigV4 service name of OpenSearch Serverless.
const ServerlessService = "aoss"

// NewServerlessClient creates an OpenSearch client signing requests for an
// OpenSearch Serverless collection. host may carry an https:// prefix.
func NewServerlessClient(awsCfg aws.Config, host string) (*opensearchapi.Client, error) {
	signer, err := requestsigner.NewSignerWithService(awsCfg, ServerlessService)
	if err != nil {
		return nil, fmt.Errorf("create aoss signer: %w", err)
	}

	return opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{"https://" + strings.TrimPrefix(host, "https://")},
			Signer:    signer,
		},
	})
}

// OpenSearchIndex queries a kNN index whose documents carry a vector field
// and a base64 encoded image.
type OpenSearchIndex struct {
	client *opensearchapi.Client
	index  string
}

var _ core.VectorIndex = (*OpenSearchIndex)(nil)

// NewOpenSearchIndex binds an index name to a client.
func NewOpenSearchIndex(client *opensearchapi.Client, index string) *OpenSearchIndex {
	return &OpenSearchIndex{client: client, index: index}
}

// Name returns the index name.
func (o *OpenSearchIndex) Name() string { return o.index }

type knnQuery struct {
	Size  int            `json:"size"`
	Query map[string]any `json:"query"`
}

// SearchBody renders the kNN query for vector with the given candidate pool.
func SearchBody(vector core.Embedding, candidates int) ([]byte, error) {
	return json.Marshal(knnQuery{
		Size: candidates,
		Query: map[string]any{
			"knn": map[string]any{
				VectorField: map[string]any{
					"vector": vector,
					"k":      candidates,
				},
			},
		},
	})
}

type catalogSource struct {
	Image string `json:"image_b64"`
}

// Search runs a kNN query and decodes the stored images. Hits keep the
// order returned by OpenSearch.
func (o *OpenSearchIndex) Search(ctx context.Context, vector core.Embedding, candidates int) ([]core.SimilarityHit, error) {
	body, err := SearchBody(vector, candidates)
	if err != nil {
		return nil, core.E("vectorindex.opensearch.search", core.KindInvalidInput, err)
	}

	resp, err := o.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{o.index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, core.E("vectorindex.opensearch.search", core.KindUpstream, err)
	}

	hits := make([]core.SimilarityHit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		var src catalogSource
		if err := json.Unmarshal(h.Source, &src); err != nil {
			return nil, core.E("vectorindex.opensearch.search", core.KindUpstream, fmt.Errorf("decode hit %s: %w", h.ID, err))
		}
		img, err := base64.StdEncoding.DecodeString(src.Image)
		if err != nil {
			return nil, core.E("vectorindex.opensearch.search", core.KindUpstream, fmt.Errorf("decode image of hit %s: %w", h.ID, err))
		}
		hits = append(hits, core.SimilarityHit{ID: h.ID, Score: float64(h.Score), Payload: img})
	}

	return hits, nil
}

// IndexBody renders the settings and mapping of a catalog index.
func IndexBody(dims int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"settings": map[string]any{"index.knn": true},
		"mappings": map[string]any{
			"properties": map[string]any{
				VectorField: map[string]any{
					"type":      "knn_vector",
					"dimension": dims,
					"method": map[string]any{
						"name":   "hnsw",
						"engine": "nmslib",
					},
				},
				ImageField: map[string]any{"type": "text"},
			},
		},
	})
}

// EnsureIndex creates the catalog index with a kNN mapping of dims
// dimensions. An existing index is left untouched.
func (o *OpenSearchIndex) EnsureIndex(ctx context.Context, dims int) error {
	body, err := IndexBody(dims)
	if err != nil {
		return err
	}

	_, err = o.client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: o.index,
		Body:  bytes.NewReader(body),
	})
	if err != nil && !strings.Contains(err.Error(), "resource_already_exists_exception") {
		return core.E("vectorindex.opensearch.ensure_index", core.KindUpstream, err)
	}
	return nil
}

// Add indexes one catalog document.
func (o *OpenSearchIndex) Add(ctx context.Context, doc Document) error {
	body, err := json.Marshal(map[string]any{
		VectorField: doc.Vector,
		ImageField:  base64.StdEncoding.EncodeToString(doc.Image),
	})
	if err != nil {
		return err
	}

	_, err = o.client.Index(ctx, opensearchapi.IndexReq{
		Index:      o.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return core.E("vectorindex.opensearch.add", core.KindUpstream, err)
	}
	return nil
}
