package dataset

import "cancerdetect/ml"

// Evaluation compares predictions with known diagnoses. Malignant is the
// positive class.
type Evaluation struct {
	Samples   int     `json:"samples"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Evaluate scores predicted against actual; pairs are matched by index.
func Evaluate(actual, predicted []ml.Label) Evaluation {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return Evaluation{}
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i := 0; i < n; i++ {
		if predicted[i] == actual[i] {
			correct++
		}
		if predicted[i] == ml.Malignant {
			predictedPositive++
		}
		if actual[i] == ml.Malignant {
			actualPositive++
			if predicted[i] == ml.Malignant {
				truePositive++
			}
		}
	}

	eval := Evaluation{Samples: n, Accuracy: float64(correct) / float64(n)}
	if predictedPositive > 0 {
		eval.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		eval.Recall = float64(truePositive) / float64(actualPositive)
	}
	return eval
}
