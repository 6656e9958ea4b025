package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDetector struct {
	lang  string
	err   error
	calls int
}

func (m *mockDetector) Detect(text string) (string, error) {
	m.calls++
	return m.lang, m.err
}

type mockTranslator struct {
	err     error
	gotText string
	gotLang string
	calls   int
}

func (m *mockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	m.calls++
	m.gotText, m.gotLang = text, targetLang
	if m.err != nil {
		return "", m.err
	}
	return "[" + targetLang + "] " + text, nil
}

func TestLanguageNormalizer_TranslatesGeneratedAnswer(t *testing.T) {
	detector := &mockDetector{lang: "hi"}
	llm := &mockLLM{response: "Bees make honey."}
	translator := &mockTranslator{}
	n := NewLanguageNormalizer(detector, llm, translator, "")

	got, err := n.AnswerInLanguage(context.Background(), "मधुमक्खियाँ क्या बनाती हैं?")

	require.NoError(t, err)
	assert.Equal(t, "[hi] Bees make honey.", got.Text)
	assert.Equal(t, "hi", got.Language)
	assert.Equal(t, 1, detector.calls)
	assert.Equal(t, 1, translator.calls)
	assert.Equal(t, "Bees make honey.", translator.gotText)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Question: मधुमक्खियाँ क्या बनाती हैं?")
}

func TestLanguageNormalizer_DetectionFailure(t *testing.T) {
	llm := &mockLLM{response: "x"}
	n := NewLanguageNormalizer(&mockDetector{err: errors.New("too short")}, llm, &mockTranslator{}, "")

	_, err := n.AnswerInLanguage(context.Background(), "?")

	var de *DetectionError
	assert.True(t, errors.As(err, &de))
	assert.Empty(t, llm.prompts)
}

func TestLanguageNormalizer_GenerationFailure(t *testing.T) {
	translator := &mockTranslator{}
	n := NewLanguageNormalizer(&mockDetector{lang: "en"}, &mockLLM{err: errors.New("503")}, translator, "")

	_, err := n.AnswerInLanguage(context.Background(), "hello")

	var ge *GenerationError
	assert.True(t, errors.As(err, &ge))
	assert.Zero(t, translator.calls)
}

func TestLanguageNormalizer_TranslationFailure(t *testing.T) {
	n := NewLanguageNormalizer(&mockDetector{lang: "ta"}, &mockLLM{response: "ok"}, &mockTranslator{err: errors.New("unsupported")}, "")

	_, err := n.AnswerInLanguage(context.Background(), "வணக்கம்")

	var te *TranslationError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "ta", te.Lang)
}
