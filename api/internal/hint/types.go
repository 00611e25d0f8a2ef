package hint

const (
	MaxCaptures  = 5
	MaxHints     = 5
	MaxNextSteps = 3
)

// Problem - то, что знаем о задаче из датасета.
type Problem struct {
	ID             int      `json:"id,omitempty"`
	Name           string   `json:"name"`
	Difficulty     string   `json:"difficulty"` // "Easy" | "Medium" | "Hard"
	Topics         []string `json:"topics"`
	AcceptanceRate float64  `json:"acceptance_rate"`
	// Description пустое - берём встроенное описание Two Sum.
	Description string `json:"description,omitempty"`
}

// Request собирается заново на каждую отправку и нигде не хранится.
type Request struct {
	Problem     Problem  `json:"problem"`
	UserCode    string   `json:"user_code"`
	Language    string   `json:"language"`
	CodeOutput  string   `json:"code_output,omitempty"`
	CaptureData []string `json:"capture_data,omitempty"` // data:URI снимков, старые первыми
}

// CaptureBlobs - не больше MaxCaptures самых свежих снимков.
func (r Request) CaptureBlobs() []string {
	blobs := r.CaptureData
	if len(blobs) > MaxCaptures {
		blobs = blobs[len(blobs)-MaxCaptures:]
	}
	return append([]string(nil), blobs...)
}

// Response всегда пригоден для показа: либо есть подсказки, либо заполнен Error.
type Response struct {
	Hints         []string `json:"hints"`
	Encouragement string   `json:"encouragement"`
	NextSteps     []string `json:"next_steps"`
	Error         string   `json:"error,omitempty"`
}

func failure(msg string) Response {
	return Response{
		Hints:     []string{},
		NextSteps: []string{},
		Error:     msg,
	}
}
