package domain

import (
	"time"

	"github.com/google/uuid"
)

// Judgement is the audit record of one completed submit.
type Judgement struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	Language             string    `db:"language" json:"language"`
	CodeSHA256           string    `db:"code_sha256" json:"codeSha256"`
	Verdict              string    `db:"verdict" json:"verdict"`
	FailedTestCase       int       `db:"failed_test_case" json:"failedTestCase"`
	TestCaseCount        int       `db:"test_case_count" json:"testCaseCount"`
	MaxExecutionTimeMs   int64     `db:"max_execution_time_ms" json:"maxExecutionTime"`
	TotalExecutionTimeMs int64     `db:"total_execution_time_ms" json:"totalExecutionTime"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
}

type JudgementTable struct {
	ID                   string
	Language             string
	CodeSHA256           string
	Verdict              string
	FailedTestCase       string
	TestCaseCount        string
	MaxExecutionTimeMs   string
	TotalExecutionTimeMs string
	CreatedAt            string
}

func GetJudgementTable() JudgementTable {
	return JudgementTable{
		ID:                   "id",
		Language:             "language",
		CodeSHA256:           "code_sha256",
		Verdict:              "verdict",
		FailedTestCase:       "failed_test_case",
		TestCaseCount:        "test_case_count",
		MaxExecutionTimeMs:   "max_execution_time_ms",
		TotalExecutionTimeMs: "total_execution_time_ms",
		CreatedAt:            "created_at",
	}
}

func (JudgementTable) TableName() string {
	return "judgements"
}

// Columns lists the table columns in insert order.
func (t JudgementTable) Columns() []string {
	return []string{
		t.ID,
		t.Language,
		t.CodeSHA256,
		t.Verdict,
		t.FailedTestCase,
		t.TestCaseCount,
		t.MaxExecutionTimeMs,
		t.TotalExecutionTimeMs,
		t.CreatedAt,
	}
}

// NewJudgement builds the audit record for a finished judging run.
func NewJudgement(language Language, codeSHA256 string, result *JudgeResult) *Judgement {
	return &Judgement{
		ID:                   uuid.New(),
		Language:             string(language),
		CodeSHA256:           codeSHA256,
		Verdict:              string(result.Verdict),
		FailedTestCase:       result.FailedTestCase,
		TestCaseCount:        result.TestCaseCount,
		MaxExecutionTimeMs:   result.MaxExecutionTime.Milliseconds(),
		TotalExecutionTimeMs: result.TotalExecutionTime.Milliseconds(),
		CreatedAt:            time.Now().UTC(),
	}
}
