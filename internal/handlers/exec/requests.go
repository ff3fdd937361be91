package exec

import "gitlab.com/fcv-judge.net/internal/domain"

// RunRequest asks for one execution of code against input
type RunRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Input    string `json:"input"`
}

// RunResponse carries the raw output of a successful run
type RunResponse struct {
	Success       bool   `json:"success"`
	Output        string `json:"output"`
	ExecutionTime int64  `json:"executionTime"`
}

// SubmitRequest asks for code to be judged against ordered test cases
type SubmitRequest struct {
	Language  string            `json:"language"`
	Code      string            `json:"code"`
	TestCases []domain.TestCase `json:"testCases"`
}

// SubmitResponse reports the verdict of a completed judging run. Success means the
// judging completed; acceptance is carried by Verdict.
type SubmitResponse struct {
	Success            bool   `json:"success"`
	Verdict            string `json:"verdict"`
	MaxExecutionTime   int64  `json:"maxExecutionTime"`
	TotalExecutionTime int64  `json:"totalExecutionTime"`
	FailedTestCase     int    `json:"failedTestCase"`
	Message            string `json:"message"`
	JudgementID        string `json:"judgementId,omitempty"`
}

// LanguageInfo describes one supported language
type LanguageInfo struct {
	Name     string `json:"name"`
	Compiled bool   `json:"compiled"`
}
