package user

import (
	"github.com/frahmantamala/sensor-monitoring/internal/access"
	userDatamodel "github.com/frahmantamala/sensor-monitoring/internal/core/datamodel/user"
)

// User is the wire shape of a dashboard account as the admin surfaces see it.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Company  *string `json:"company"`
}

// Actor maps the account onto the access model's identity. An unparseable
// role degrades to plain user.
func (u *User) Actor() access.Actor {
	role, err := access.ParseRole(u.Role)
	if err != nil {
		role = access.RoleUser
	}
	return access.Actor{Username: u.Username, Role: role}
}

func (u *User) CompanyName() string {
	if u.Company == nil {
		return ""
	}
	return *u.Company
}

func FromDataModel(dm *userDatamodel.User) *User {
	return &User{
		ID:       dm.ID,
		Username: dm.Username,
		Name:     dm.Name,
		Role:     dm.Role,
		Company:  dm.Company,
	}
}

func FromDataModelSlice(dms []*userDatamodel.User) []*User {
	result := make([]*User, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
