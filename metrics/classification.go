// Package metrics は二値分類の評価指標を提供します。
// 混同行列、ROC曲線、AUC、およびブートストラップ信頼区間を計算します。
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// ConfusionMatrix は2x2の混同行列です（行=予測、列=実測）。
type ConfusionMatrix struct {
	TP int // 予測=Positive, 実測=Positive
	FP int // 予測=Positive, 実測=Negative
	FN int // 予測=Negative, 実測=Positive
	TN int // 予測=Negative, 実測=Negative
}

// NewConfusionMatrix はラベルと予測から混同行列を計算する
//
// パラメータ:
//   - yTrue: 実測ラベル（0または1）
//   - yPred: 予測ラベル（0または1）
//
// 戻り値:
//   - *ConfusionMatrix: 混同行列
//   - error: エラーが発生した場合
func NewConfusionMatrix(yTrue, yPred *mat.VecDense) (*ConfusionMatrix, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, yPred.Len(), 0)
	}

	cm := &ConfusionMatrix{}
	for i := 0; i < n; i++ {
		truth, pred := yTrue.AtVec(i), yPred.AtVec(i)
		if (truth != 0 && truth != 1) || (pred != 0 && pred != 1) {
			return nil, errors.NewValueError("NewConfusionMatrix", "labels must be binary (0 or 1)")
		}
		switch {
		case pred == 1 && truth == 1:
			cm.TP++
		case pred == 1 && truth == 0:
			cm.FP++
		case pred == 0 && truth == 1:
			cm.FN++
		default:
			cm.TN++
		}
	}
	return cm, nil
}

// Total は総サンプル数を返す
func (cm *ConfusionMatrix) Total() int {
	return cm.TP + cm.FP + cm.FN + cm.TN
}

// Accuracy は正解率を計算する
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		return 0
	}
	return float64(cm.TP+cm.TN) / float64(total)
}

// Sensitivity は感度（真陽性率、再現率）を計算する。
// 実測Positiveが存在しない場合は0を返し、UndefinedMetricWarningを発生させる。
func (cm *ConfusionMatrix) Sensitivity() float64 {
	if cm.TP+cm.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("sensitivity", "no positive samples", 0))
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// Specificity は特異度（真陰性率）を計算する。
// 実測Negativeが存在しない場合は0を返し、UndefinedMetricWarningを発生させる。
func (cm *ConfusionMatrix) Specificity() float64 {
	if cm.TN+cm.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("specificity", "no negative samples", 0))
		return 0
	}
	return float64(cm.TN) / float64(cm.TN+cm.FP)
}

// String は混同行列のテキスト表現を返す（行=予測、列=実測）
func (cm *ConfusionMatrix) String() string {
	return fmt.Sprintf(
		"              actual+  actual-\n"+
			"predicted+  %8d %8d\n"+
			"predicted-  %8d %8d\n",
		cm.TP, cm.FP, cm.FN, cm.TN)
}

// ROCPoint はROC曲線上の1点です。
type ROCPoint struct {
	FPR float64
	TPR float64
}

// ROCCurve はスコアの降順閾値に対応するROC曲線を計算する
//
// パラメータ:
//   - yTrue: 実測ラベル（0または1）
//   - scores: 陽性クラスのスコア（確率または判別値）
//
// 戻り値:
//   - []ROCPoint: (偽陽性率, 真陽性率) の点列
//   - error: エラーが発生した場合
func ROCCurve(yTrue, scores *mat.VecDense) ([]ROCPoint, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("ROCCurve", "empty vector")
	}
	if scores.Len() != n {
		return nil, errors.NewDimensionError("ROCCurve", n, scores.Len(), 0)
	}

	y := make([]float64, n)
	classes := make([]bool, n)
	for i := 0; i < n; i++ {
		truth := yTrue.AtVec(i)
		if truth != 0 && truth != 1 {
			return nil, errors.NewValueError("ROCCurve", "labels must be binary (0 or 1)")
		}
		y[i] = scores.AtVec(i)
		classes[i] = truth == 1
	}

	// gonumのROCはスコア昇順を要求する
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)

	points := make([]ROCPoint, len(tpr))
	for i := range points {
		points[i] = ROCPoint{FPR: fpr[i], TPR: tpr[i]}
	}
	return points, nil
}

// AUC はROC曲線下面積を計算する。
// ラベルが片方のクラスしか含まない場合、AUCは定義されないため0.5を返し、
// UndefinedMetricWarningを発生させる。
func AUC(yTrue, scores *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if scores.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, scores.Len(), 0)
	}

	pos, neg := 0, 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}
	if pos == 0 || neg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("auc", "only one class present", 0.5))
		return 0.5, nil
	}

	points, err := ROCCurve(yTrue, scores)
	if err != nil {
		return 0, err
	}
	fpr := make([]float64, len(points))
	tpr := make([]float64, len(points))
	for i, p := range points {
		fpr[i] = p.FPR
		tpr[i] = p.TPR
	}
	return integrate.Trapezoidal(fpr, tpr), nil
}
