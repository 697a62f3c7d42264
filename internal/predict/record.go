package predict

// Columns is the column order the classifier was trained on.
var Columns = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// Record is one coded patient row. It is built per submission and never mutated.
type Record struct {
	Age      int     `json:"age"`
	Sex      int     `json:"sex"`
	CP       int     `json:"cp"`
	Trestbps int     `json:"trestbps"`
	Chol     int     `json:"chol"`
	FBS      int     `json:"fbs"`
	Restecg  int     `json:"restecg"`
	Thalach  int     `json:"thalach"`
	Exang    int     `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    int     `json:"slope"`
	CA       int     `json:"ca"`
	Thal     int     `json:"thal"`
}

// Values returns the record as a feature vector in Columns order.
func (r Record) Values() []float64 {
	return []float64{
		float64(r.Age),
		float64(r.Sex),
		float64(r.CP),
		float64(r.Trestbps),
		float64(r.Chol),
		float64(r.FBS),
		float64(r.Restecg),
		float64(r.Thalach),
		float64(r.Exang),
		r.Oldpeak,
		float64(r.Slope),
		float64(r.CA),
		float64(r.Thal),
	}
}

// Map returns the record keyed by column name.
func (r Record) Map() map[string]float64 {
	values := r.Values()
	out := make(map[string]float64, len(Columns))
	for i, name := range Columns {
		out[name] = values[i]
	}
	return out
}
