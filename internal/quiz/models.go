package quiz

type Quiz struct {
	ID             string `json:"id"`
	QuizName       string `json:"quiz_name"`
	Category       string `json:"category,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"` // Easy|Medium|Hard
	TimeLimit      int    `json:"time_limit"`           // minutes
	TotalMarks     int    `json:"total_marks"`
	PassingScore   int    `json:"passing_score,omitempty"`
	Description    string `json:"description,omitempty"`
	RandomizeOrder bool   `json:"randomize_order"`
	ShowResults    bool   `json:"show_results"`
	AllowRetake    bool   `json:"allow_retake"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      int64  `json:"created_at,omitempty"`
}

type Question struct {
	ID           string `json:"id"`
	QuizID       string `json:"quiz_id"`
	QuestionText string `json:"question_text"`
	Option1      string `json:"option1"`
	Option2      string `json:"option2"`
	Option3      string `json:"option3"`
	Option4      string `json:"option4"`
	// Zeroed (and therefore omitted) when serving non-admin callers.
	CorrectOption int   `json:"correct_option,omitempty"`
	Marks         int   `json:"marks"`
	CreatedAt     int64 `json:"created_at,omitempty"`
}

type Result struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	QuizID         string `json:"quiz_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CreatedAt      int64  `json:"created_at"`

	// Joined display fields, populated by listings only.
	Name     string `json:"name,omitempty"`
	QuizName string `json:"quiz_name,omitempty"`
}

// MaxQuestionsPerQuiz caps how many questions an admin can attach to one quiz.
const MaxQuestionsPerQuiz = 50
