package quizclient

// Wire types mirroring the API's JSON shapes. Questions fetched by a standard
// user carry no correct_option; the field stays zero in that case.

type Quiz struct {
	ID             string `json:"id"`
	QuizName       string `json:"quiz_name"`
	Category       string `json:"category,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	TimeLimit      int    `json:"time_limit"` // minutes
	TotalMarks     int    `json:"total_marks"`
	PassingScore   int    `json:"passing_score,omitempty"`
	Description    string `json:"description,omitempty"`
	RandomizeOrder bool   `json:"randomize_order"`
	ShowResults    bool   `json:"show_results"`
	AllowRetake    bool   `json:"allow_retake"`
}

type Question struct {
	ID            string `json:"id"`
	QuizID        string `json:"quiz_id"`
	QuestionText  string `json:"question_text"`
	Option1       string `json:"option1"`
	Option2       string `json:"option2"`
	Option3       string `json:"option3"`
	Option4       string `json:"option4"`
	CorrectOption int    `json:"correct_option,omitempty"`
	Marks         int    `json:"marks"`
}

type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    *int   `json:"user_answer"` // nil = unanswered
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

type SubmitResponse struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Results        []QuestionResult `json:"results"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Result struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	QuizID         string `json:"quiz_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CreatedAt      int64  `json:"created_at"`
	Name           string `json:"name,omitempty"`
	QuizName       string `json:"quiz_name,omitempty"`
}
