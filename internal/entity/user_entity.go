package entity

import "encoding/json"

// UserID is an opaque identifier. The server issues UUID strings; some
// deployments return bare integers. Both decode to the string form.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// User is the authenticated identity as returned by the auth endpoints.
type User struct {
	Id       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
