package metrics

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/diapredict/pkg/errors"
)

// ブートストラップで利用可能な指標名
const (
	MetricAccuracy    = "accuracy"
	MetricSensitivity = "sensitivity"
	MetricSpecificity = "specificity"
	MetricAUC         = "auc"
)

var knownMetrics = []string{MetricAccuracy, MetricSensitivity, MetricSpecificity, MetricAUC}

// DefaultResamples はブートストラップの再標本数のデフォルト値
const DefaultResamples = 1000

// Interval は点推定値と95%信頼区間です。
type Interval struct {
	Point float64
	Lower float64
	Upper float64
}

// BootstrapCI は指定した指標の点推定値と95%ブートストラップ信頼区間を計算する。
//
// N個の予測とラベルからN個のインデックスを復元抽出でB回再標本化し、
// 各再標本で指標を計算して、経験分布の2.5/97.5パーセンタイルを区間とする。
// シードを固定すれば再実行しても同じ区間が得られる。
//
// パラメータ:
//   - metric: 指標名（accuracy, sensitivity, specificity, auc）。
//     認識できない名前は計算を開始する前にInvalidMetricErrorになる。
//   - yTrue: 実測ラベル（0または1）
//   - yPred: 予測。aucの場合はスコア、それ以外はハードラベル。
//   - resamples: 再標本数B。0以下ならDefaultResamples。100未満はエラー。
//   - seed: 乱数シード
func BootstrapCI(metric string, yTrue, yPred *mat.VecDense, resamples int, seed uint64) (*Interval, error) {
	statFn, err := metricFunc(metric)
	if err != nil {
		return nil, err
	}
	if resamples <= 0 {
		resamples = DefaultResamples
	}
	if resamples < 100 {
		return nil, errors.NewValueError("BootstrapCI", "resamples must be at least 100")
	}

	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("BootstrapCI", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("BootstrapCI", n, yPred.Len(), 0)
	}

	truth := make([]float64, n)
	pred := make([]float64, n)
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		if t != 0 && t != 1 {
			return nil, errors.NewValueError("BootstrapCI", "labels must be binary (0 or 1)")
		}
		truth[i] = t
		pred[i] = p
	}

	point := statFn(truth, pred)

	rng := rand.New(rand.NewPCG(seed, seed))
	stats := make([]float64, resamples)
	sampleTruth := make([]float64, n)
	samplePred := make([]float64, n)
	for b := 0; b < resamples; b++ {
		for i := 0; i < n; i++ {
			idx := rng.IntN(n)
			sampleTruth[i] = truth[idx]
			samplePred[i] = pred[idx]
		}
		stats[b] = statFn(sampleTruth, samplePred)
	}

	sort.Float64s(stats)
	return &Interval{
		Point: point,
		Lower: stat.Quantile(0.025, stat.Empirical, stats, nil),
		Upper: stat.Quantile(0.975, stat.Empirical, stats, nil),
	}, nil
}

// metricFunc は指標名を点指標の計算関数に解決する。
// 再標本ごとに呼ばれるため、退化した再標本（片方のクラスのみ）でも
// 警告を出さずに既定値を返すスライス版を使用する。
func metricFunc(metric string) (func(truth, pred []float64) float64, error) {
	switch metric {
	case MetricAccuracy:
		return accuracySlice, nil
	case MetricSensitivity:
		return sensitivitySlice, nil
	case MetricSpecificity:
		return specificitySlice, nil
	case MetricAUC:
		return aucSlice, nil
	}
	return nil, errors.NewInvalidMetricError(metric, knownMetrics)
}

func accuracySlice(truth, pred []float64) float64 {
	correct := 0
	for i := range truth {
		label := 0.0
		if pred[i] >= 0.5 {
			label = 1
		}
		if label == truth[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}

func sensitivitySlice(truth, pred []float64) float64 {
	tp, fn := 0, 0
	for i := range truth {
		if truth[i] == 1 {
			if pred[i] >= 0.5 {
				tp++
			} else {
				fn++
			}
		}
	}
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

func specificitySlice(truth, pred []float64) float64 {
	tn, fp := 0, 0
	for i := range truth {
		if truth[i] == 0 {
			if pred[i] >= 0.5 {
				fp++
			} else {
				tn++
			}
		}
	}
	if tn+fp == 0 {
		return 0
	}
	return float64(tn) / float64(tn+fp)
}

// aucSlice はMann-Whitney統計によりAUCを計算する。
// 片方のクラスしか含まない退化した再標本では0.5を返す。
func aucSlice(truth, scores []float64) float64 {
	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(truth))
	pos, neg := 0, 0
	for i := range truth {
		pairs[i] = pair{score: scores[i], pos: truth[i] == 1}
		if pairs[i].pos {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// 同点スコアには平均順位を割り当てる
	var rankSum float64
	for i := 0; i < len(pairs); {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1始まりの順位 (i+1 + j) / 2
		for k := i; k < j; k++ {
			if pairs[k].pos {
				rankSum += avgRank
			}
		}
		i = j
	}
	return (rankSum - float64(pos)*float64(pos+1)/2) / (float64(pos) * float64(neg))
}
