// internal/search/records/sql.go
package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	stderrors "trial-search/internal/common/errors"
	"trial-search/internal/common/logger"
	"trial-search/internal/common/metrics"
	"trial-search/internal/models"
	"trial-search/internal/search/criteria"
	"trial-search/internal/search/fields"
	"trial-search/internal/search/operators"
)

// SQLRepository executes criteria against the trial_records table.
type SQLRepository struct {
	db       *sql.DB
	registry *fields.Registry
	table    string
	logger   logger.Logger
}

func NewSQLRepository(db *sql.DB, registry *fields.Registry, table string, log logger.Logger) *SQLRepository {
	return &SQLRepository{
		db:       db,
		registry: registry,
		table:    table,
		logger:   log.WithFields(map[string]interface{}{"component": "record-sql"}),
	}
}

func (r *SQLRepository) Backend() string { return "postgres" }

func (r *SQLRepository) Search(ctx context.Context, criteriaModel models.CriteriaModel, limit int) (Result, error) {
	start := time.Now()

	where, args, err := BuildWhere(r.registry, criteriaModel)
	if err != nil {
		return Result{}, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s", strings.Join(recordColumns, ", "), r.table,
	)
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY trial_id LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Result{}, stderrors.NewQueryExecutionFailedError("postgres", err)
	}
	defer rows.Close()

	result := Result{Records: []models.TrialRecord{}}
	for rows.Next() {
		var rec models.TrialRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.TrialID,
			&rec.ProtocolTitle,
			&rec.Phase,
			&rec.Status,
			&rec.Sponsor,
			&rec.Country,
			&rec.TherapeuticArea,
			&rec.EnrollmentCount,
			&rec.StartDate,
			&rec.CompletionDate,
			&rec.InclusionCriteria,
			&rec.ExclusionCriteria,
			&rec.Summary,
			&rec.IsRandomized,
			&rec.HasAdverseEvents,
			&rec.PrincipalInvestigator,
		); err != nil {
			return Result{}, stderrors.NewQueryExecutionFailedError("postgres", err)
		}
		result.Records = append(result.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Result{}, stderrors.NewQueryExecutionFailedError("postgres", err)
	}

	result.Total = int64(len(result.Records))

	metrics.SearchExecutions.WithLabelValues("postgres").Inc()
	metrics.SearchDuration.WithLabelValues("postgres").Observe(time.Since(start).Seconds())

	return result, nil
}

// BuildWhere compiles normalized criteria into a parameterized WHERE
// clause. Each step wraps the accumulated expression in parentheses before
// attaching the next condition, which is what preserves the strict
// left-to-right semantics against SQL's native AND/OR precedence.
func BuildWhere(registry *fields.Registry, criteriaModel models.CriteriaModel) (string, []interface{}, error) {
	rows := criteria.Normalize(criteriaModel)
	if len(rows) == 0 {
		return "", nil, nil
	}

	args := []interface{}{}

	expr, err := rowCondition(registry, rows[0], &args)
	if err != nil {
		return "", nil, err
	}
	for i := 1; i < len(rows); i++ {
		next, err := rowCondition(registry, rows[i], &args)
		if err != nil {
			return "", nil, err
		}
		connective := "AND"
		if rows[i-1].Connective == models.ConnectiveOr {
			connective = "OR"
		}
		expr = fmt.Sprintf("(%s) %s %s", expr, connective, next)
	}

	return expr, args, nil
}

func rowCondition(registry *fields.Registry, row models.SearchCriterion, args *[]interface{}) (string, error) {
	field, ok := registry.Lookup(row.Field)
	if !ok || !isRecordColumn(row.Field) {
		return "", stderrors.NewUnknownFieldError(row.Field)
	}

	op := operators.Operator(row.Operator)
	positive, negated := positiveOperator(op)

	values := row.Value.Values()
	parts := make([]string, 0, len(values))
	for _, value := range values {
		cond, err := valueCondition(field, positive, value, args)
		if err != nil {
			return "", err
		}
		parts = append(parts, cond)
	}

	joined := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		joined = "(" + joined + ")"
	}
	if negated {
		return "NOT " + ensureWrapped(joined), nil
	}
	return joined, nil
}

func valueCondition(field models.FieldDescriptor, op operators.Operator, value string, args *[]interface{}) (string, error) {
	column := field.ID

	switch field.Type {
	case models.SemanticNumber:
		placeholder := nextPlaceholder(args, value)
		switch op {
		case operators.OpEq, operators.OpIs:
			return fmt.Sprintf("%s::numeric = %s::numeric", column, placeholder), nil
		case operators.OpGt, operators.OpGte, operators.OpLt, operators.OpLte:
			return fmt.Sprintf("%s::numeric %s %s::numeric", column, op, placeholder), nil
		}
	case models.SemanticDate:
		placeholder := nextPlaceholder(args, value)
		switch op {
		case operators.OpIs, operators.OpEq:
			return fmt.Sprintf("%s::date = %s::date", column, placeholder), nil
		case operators.OpGt, operators.OpGte, operators.OpLt, operators.OpLte:
			return fmt.Sprintf("%s::date %s %s::date", column, op, placeholder), nil
		}
	default:
		switch op {
		case operators.OpContains:
			placeholder := nextPlaceholder(args, "%"+escapeLikePattern(value)+"%")
			return fmt.Sprintf("%s ILIKE %s", column, placeholder), nil
		case operators.OpIs, operators.OpEq:
			placeholder := nextPlaceholder(args, value)
			return fmt.Sprintf("lower(%s) = lower(%s)", column, placeholder), nil
		}
	}

	return "", stderrors.NewInvalidOperatorError(field.ID, string(op))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern neutralizes LIKE metacharacters in the user value so
// contains stays a literal substring match.
func escapeLikePattern(value string) string {
	return likeEscaper.Replace(value)
}

func positiveOperator(op operators.Operator) (operators.Operator, bool) {
	switch op {
	case operators.OpIsNot:
		return operators.OpIs, true
	case operators.OpNotContains:
		return operators.OpContains, true
	case operators.OpNe:
		return operators.OpEq, true
	default:
		return op, false
	}
}

func nextPlaceholder(args *[]interface{}, value interface{}) string {
	*args = append(*args, value)
	return fmt.Sprintf("$%d", len(*args))
}

func ensureWrapped(expr string) string {
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return expr
	}
	return "(" + expr + ")"
}
