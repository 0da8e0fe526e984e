package core

import (
	"math"
)

// Score returns the log10 posterior scores of tokens under model. Only tokens
// in the shared vocabulary contribute; all others are ignored.
func Score(tokens TokenSet, model *Model) (hamScore, spamScore float64) {
	for token := range tokens {
		if !model.Shared.Contains(token) {
			continue
		}
		hamScore += math.Log10(model.Ham[token])
		spamScore += math.Log10(model.Spam[token])
	}
	hamScore += math.Log10(model.HamPrior)
	spamScore += math.Log10(model.SpamPrior)
	return hamScore, spamScore
}

// Classify labels tokens spam only when the spam score is strictly greater
func Classify(tokens TokenSet, model *Model) Label {
	hamScore, spamScore := Score(tokens, model)
	return decide(hamScore, spamScore)
}

func decide(hamScore, spamScore float64) Label {
	if spamScore > hamScore {
		return LabelSpam
	}
	return LabelHam
}

// Classification is the verdict for one named document
type Classification struct {
	Name  string
	Label Label
}

// ClassifyDocuments tokenizes and labels docs in order
func ClassifyDocuments(tokenizer *Tokenizer, model *Model, docs []Document) []Classification {
	out := make([]Classification, len(docs))
	for i, doc := range docs {
		out[i] = Classification{
			Name:  doc.Name,
			Label: Classify(tokenizer.Tokenize(doc.Text), model),
		}
	}
	return out
}
