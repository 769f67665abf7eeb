package model

import "gonum.org/v1/gonum/mat"

// Classifier は整数ラベルを学習・予測する分類器のインターフェース
//
// 学習アルゴリズムの実体（SMO など）はこのインターフェースの裏側に隠れる。
// training / metrics / inference パッケージは具象型に依存しない。
type Classifier interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X mat.Matrix, y []int) error

	// Predict は各行のクラスラベルを返す
	Predict(X mat.Matrix) ([]int, error)

	// Classes は学習時に見たクラスを昇順で返す
	Classes() []int

	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
}

// ProbabilisticClassifier は確率推定を持つ分類器
type ProbabilisticClassifier interface {
	Classifier

	// HasProbability は確率推定付きで学習されたかどうかを返す
	HasProbability() bool

	// PredictProba は各行のクラス確率を返す（列は Classes() の順）
	PredictProba(X mat.Matrix) (*mat.Dense, error)
}

// LinearWeighter は線形カーネルの重みベクトルを公開する分類器
type LinearWeighter interface {
	// Coef は二値分類器ごとの重みベクトル w = Σ αᵢ yᵢ xᵢ を返す
	Coef() ([][]float64, error)
}

// KernelReporter は学習時のカーネル設定を報告する
type KernelReporter interface {
	Params() KernelParams
}

// Factory は設定から未学習の分類器を生成する
type Factory func(params KernelParams) (Classifier, error)

// Restorer はシリアライズされたスナップショットから分類器を復元する
type Restorer func(snapshot []byte) (Classifier, error)

// Backend はソルバー実装の組（生成と復元）
type Backend struct {
	Name    string
	New     Factory
	Restore Restorer
}
