package store

// Entities is the aggregate of every collection a peer owns.
type Entities struct {
	Users     Users
	Buildings Buildings
}

func NewEntities() *Entities {
	return &Entities{}
}
