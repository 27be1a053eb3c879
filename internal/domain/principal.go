package domain

// Principal is the authenticated caller of a mutating operation
type Principal struct {
	ID   string
	Role Role
}

// Anonymous is used for public entry points such as the contact form.
var Anonymous = Principal{ID: "anonymous"}
