package core

import (
	"fmt"
	"sort"
)

// Label is the verdict for a single document
type Label string

const (
	// LabelHam marks a legitimate message
	LabelHam Label = "ham"
	// LabelSpam marks an unsolicited message
	LabelSpam Label = "spam"
)

// ParseLabel converts the literal strings "ham" and "spam" into a Label
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelHam, LabelSpam:
		return Label(s), nil
	default:
		return "", fmt.Errorf("unknown label %q", s)
	}
}

// GroundTruth is the reference label of one test document. An empty Name
// aligns by position only.
type GroundTruth struct {
	Name  string
	Label Label
}

// Document is one email identified by its file name
type Document struct {
	Name string
	Text string
}

// TokenSet is the set of unique tokens of a document
type TokenSet map[string]struct{}

// NewTokenSet builds a set from the given tokens
func NewTokenSet(tokens ...string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// Contains reports whether token is a member of the set
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the members in lexical order
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// FrequencyTable maps a token to the number of class documents containing it
type FrequencyTable map[string]int

// Vocabulary returns the tokens present in the table
func (f FrequencyTable) Vocabulary() TokenSet {
	set := make(TokenSet, len(f))
	for token := range f {
		set[token] = struct{}{}
	}
	return set
}

// ProbabilityTable maps a token to P(token | class)
type ProbabilityTable map[string]float64

// TrainingSet holds the k-independent statistics of both training classes.
// It is computed once per run and shared read-only by every sweep trial.
type TrainingSet struct {
	Ham       FrequencyTable
	Spam      FrequencyTable
	HamCount  int
	SpamCount int
}

// SharedVocabulary returns the tokens seen in both classes
func (t *TrainingSet) SharedVocabulary() TokenSet {
	small, large := t.Ham, t.Spam
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := make(TokenSet)
	for token := range small {
		if _, ok := large[token]; ok {
			shared[token] = struct{}{}
		}
	}
	return shared
}

// Model is a trained classifier for a single smoothing constant
type Model struct {
	K         float64
	Ham       ProbabilityTable
	Spam      ProbabilityTable
	HamPrior  float64
	SpamPrior float64
	Shared    TokenSet
}

// TrialResult is one row of the smoothing sweep
type TrialResult struct {
	K             float64
	CorrectHam    int
	CorrectSpam   int
	IncorrectHam  int
	IncorrectSpam int
	Accuracy      float64
}

// Total returns the number of documents scored in the trial
func (r TrialResult) Total() int {
	return r.CorrectHam + r.CorrectSpam + r.IncorrectHam + r.IncorrectSpam
}

// SweepResult is the ordered list of trials and the best one
type SweepResult struct {
	RunID  string
	Trials []TrialResult
	Best   TrialResult
}

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// AnalysisResult represents the verdict of the classification service
type AnalysisResult struct {
	Label       Label
	HamScore    float64
	SpamScore   float64
	Explanation string
	ModelUsed   string
}

// IsSpam reports whether the verdict is spam
func (r *AnalysisResult) IsSpam() bool {
	return r.Label == LabelSpam
}

// Margin is the spam log score minus the ham log score
func (r *AnalysisResult) Margin() float64 {
	return r.SpamScore - r.HamScore
}
