package constants

const (
	// DateKeyLayout is the YYYY-MM-DD form used for log dates and habit ranges
	DateKeyLayout = "2006-01-02"
)
