package domain

// Skill is a named capability tracked per person and required per task.
type Skill struct {
	ID   int64
	Name string
}

// Person is an immutable snapshot of an assignable person.
type Person struct {
	ID        int64
	Name      string
	ManagerID string        // grouping key of the owning manager
	IMID      string        // messaging id notifications are addressed to
	Ratings   map[int64]int // skill id -> rating 1..10
}
