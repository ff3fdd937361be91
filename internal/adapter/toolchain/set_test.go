package toolchain

import (
	"errors"
	"reflect"
	"testing"

	"gitlab.com/fcv-judge.net/internal/adapter/logging"
	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

func TestDefaultSet_ResolvesEveryLanguage(t *testing.T) {
	set := NewDefaultSet(config.NewExecutorConfig(), logging.NewNopLogger())

	for _, language := range domain.SupportedLanguages {
		adapter, err := set.Adapter(language)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", language, err)
		}
		if adapter.Language() != language {
			t.Errorf("adapter for %s reports %s", language, adapter.Language())
		}
	}

	want := []domain.Language{domain.LanguageCpp, domain.LanguageJava, domain.LanguageJavaScript, domain.LanguagePython}
	if got := set.Languages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Languages() = %v, want %v", got, want)
	}
}

func TestSet_UnsupportedLanguage(t *testing.T) {
	set := NewSet()
	_, err := set.Adapter("ruby")
	if !errors.Is(err, errs.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if kind := domain.AsExecutionError(err).Kind; kind != domain.FailureInternalError {
		t.Errorf("unsupported language should classify as internal_error, got %s", kind)
	}
}
