package shared

// Viewer identifies who is performing an operation. The zero value is an
// anonymous viewer.
type Viewer struct {
	UserID int64
}

// Anonymous returns a viewer with no identity.
func Anonymous() Viewer {
	return Viewer{}
}

// AuthenticatedAs returns a viewer for the given user.
func AuthenticatedAs(userID int64) Viewer {
	return Viewer{UserID: userID}
}

// IsAuthenticated reports whether the viewer has an identity.
func (v Viewer) IsAuthenticated() bool {
	return v.UserID > 0
}

// MembershipID is the user id used when probing relation tables. Anonymous
// viewers map to 0, which no stored row carries.
func (v Viewer) MembershipID() int64 {
	if !v.IsAuthenticated() {
		return 0
	}
	return v.UserID
}
