package projectsys

// Job is an active construction job.
type Job struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Number    string `json:"number"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// TeamMember is an organization membership with its linked user.
type TeamMember struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	User struct {
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"user"`
}

// Member is the narrow membership projection used for task assignment.
type Member struct {
	ID   string
	Name string
}

// Account is a customer or vendor account.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateTaskRequest carries the fields for task creation. JobID and Name are
// required; the rest are optional.
type CreateTaskRequest struct {
	JobID       string
	Name        string
	Description string
	StartDate   string
	EndDate     string
	AssigneeIDs []string
}

// CreatedTask is the confirmation payload for a created task.
type CreatedTask struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
