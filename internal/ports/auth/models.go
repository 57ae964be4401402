package auth

// Claims representa la identidad extraída del token.
type Claims struct {
	UserID  string
	Email   string
	IsStaff bool // actor privilegiado (staff/admin)
}
