package store

import "time"

type User struct {
	ID          int64
	DisplayName string
	Email       string
	CreatedAt   time.Time
}

type Project struct {
	ID      int64
	OwnerID int64
	Title   string
	Status  uint32
	// TeamSize counts the owner plus all memberships.
	TeamSize  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Post struct {
	ID        int64
	ProjectID int64
	OwnerID   int64
	Title     string
	Summary   string
	Body      string
	Status    uint32
	Dtags     uint32
	Ttags     uint32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Membership struct {
	ProjectID  int64
	UserID     int64
	ConfigRole int
	CreatedAt  time.Time
}

// SysregEntry is one row of the sysreg registry: a packed integer
// value carrying meaning per tag family. The config family holds
// permission rules; the tag families hold option metadata.
type SysregEntry struct {
	Value       uint32
	Name        string
	Description string
	TagFamily   string
	TagLogic    string
	IsDefault   bool
}
