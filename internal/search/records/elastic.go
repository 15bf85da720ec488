// internal/search/records/elastic.go
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/common/metrics"
	"trial-search/internal/models"
	"trial-search/internal/search/criteria"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
)

// ElasticRepository executes criteria against the trial-record index.
type ElasticRepository struct {
	client   *elasticsearch.Client
	registry *fields.Registry
	index    string
	logger   logger.Logger
}

func NewElasticRepository(client *elasticsearch.Client, registry *fields.Registry, index string, log logger.Logger) *ElasticRepository {
	return &ElasticRepository{
		client:   client,
		registry: registry,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"component": "record-elastic"}),
	}
}

func (r *ElasticRepository) Backend() string { return "elasticsearch" }

type esSearchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.TrialRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *ElasticRepository) Search(ctx context.Context, criteriaModel models.CriteriaModel, limit int) (Result, error) {
	start := time.Now()

	query, err := BuildElasticQuery(r.registry, criteriaModel)
	if err != nil {
		return Result{}, err
	}

	body := map[string]interface{}{
		"size": limit,
	}
	if query != nil {
		body["query"] = query
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, stderrors.NewSearchQueryFailedError(err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(payload)),
		r.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, stderrors.NewSearchTimeoutError()
		}
		return Result{}, stderrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return Result{}, stderrors.NewSearchQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return Result{}, stderrors.NewSearchQueryFailedError(err)
	}

	result := Result{
		Records: make([]models.TrialRecord, 0, len(parsed.Hits.Hits)),
		Total:   parsed.Hits.Total.Value,
	}
	for _, hit := range parsed.Hits.Hits {
		result.Records = append(result.Records, hit.Source)
	}

	metrics.SearchExecutions.WithLabelValues("elasticsearch").Inc()
	metrics.SearchDuration.WithLabelValues("elasticsearch").Observe(time.Since(start).Seconds())

	return result, nil
}

// BuildElasticQuery compiles normalized criteria into a bool query. As in
// the SQL compiler, the accumulated query is folded pairwise so connectives
// apply strictly left to right.
func BuildElasticQuery(registry *fields.Registry, criteriaModel models.CriteriaModel) (map[string]interface{}, error) {
	rows := criteria.Normalize(criteriaModel)
	if len(rows) == 0 {
		return nil, nil
	}

	query, err := elasticRowClause(registry, rows[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(rows); i++ {
		next, err := elasticRowClause(registry, rows[i])
		if err != nil {
			return nil, err
		}
		if rows[i-1].Connective == models.ConnectiveOr {
			query = map[string]interface{}{
				"bool": map[string]interface{}{
					"should":               []interface{}{query, next},
					"minimum_should_match": 1,
				},
			}
		} else {
			query = map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []interface{}{query, next},
				},
			}
		}
	}

	return query, nil
}

func elasticRowClause(registry *fields.Registry, row models.SearchCriterion) (map[string]interface{}, error) {
	field, ok := registry.Lookup(row.Field)
	if !ok {
		return nil, stderrors.NewUnknownFieldError(row.Field)
	}

	op := operators.Operator(row.Operator)
	positive, negated := positiveOperator(op)

	values := row.Value.Values()
	clauses := make([]interface{}, 0, len(values))
	for _, value := range values {
		clause, err := elasticValueClause(field, positive, value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	var combined map[string]interface{}
	if len(clauses) == 1 {
		combined = clauses[0].(map[string]interface{})
	} else {
		combined = map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               clauses,
				"minimum_should_match": 1,
			},
		}
	}

	if negated {
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []interface{}{combined},
			},
		}, nil
	}
	return combined, nil
}

func elasticValueClause(field models.FieldDescriptor, op operators.Operator, value string) (map[string]interface{}, error) {
	switch field.Type {
	case models.SemanticNumber:
		num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, stderrors.NewValidationFailedError(
				fmt.Sprintf("field %s requires a numeric value", field.ID))
		}
		switch op {
		case operators.OpEq, operators.OpIs:
			return map[string]interface{}{"term": map[string]interface{}{field.ID: num}}, nil
		case operators.OpGt, operators.OpGte, operators.OpLt, operators.OpLte:
			return rangeClause(field.ID, op, num), nil
		}
	case models.SemanticDate:
		switch op {
		case operators.OpIs, operators.OpEq:
			// Date-only term; the index stores calendar dates.
			return map[string]interface{}{"term": map[string]interface{}{field.ID: value}}, nil
		case operators.OpGt, operators.OpGte, operators.OpLt, operators.OpLte:
			return rangeClause(field.ID, op, value), nil
		}
	default:
		switch op {
		case operators.OpContains:
			return map[string]interface{}{
				"wildcard": map[string]interface{}{
					field.ID: map[string]interface{}{
						"value":            "*" + escapeWildcardPattern(strings.ToLower(value)) + "*",
						"case_insensitive": true,
					},
				},
			}, nil
		case operators.OpIs, operators.OpEq:
			return map[string]interface{}{
				"term": map[string]interface{}{
					field.ID: map[string]interface{}{
						"value":            strings.ToLower(value),
						"case_insensitive": true,
					},
				},
			}, nil
		}
	}

	return nil, stderrors.NewInvalidOperatorError(field.ID, string(op))
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// escapeWildcardPattern neutralizes wildcard metacharacters in the user
// value so contains stays a literal substring match.
func escapeWildcardPattern(value string) string {
	return wildcardEscaper.Replace(value)
}

func rangeClause(fieldID string, op operators.Operator, value interface{}) map[string]interface{} {
	bound := map[operators.Operator]string{
		operators.OpGt:  "gt",
		operators.OpGte: "gte",
		operators.OpLt:  "lt",
		operators.OpLte: "lte",
	}[op]

	return map[string]interface{}{
		"range": map[string]interface{}{
			fieldID: map[string]interface{}{bound: value},
		},
	}
}
