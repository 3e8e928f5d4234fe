package store

import (
	"testing"

	"entity-rpc/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateUserIsNotIdempotent(t *testing.T) {
	var users Users
	p := entity.CreateUserParam{ID: "3", Name: "emi", Email: "emi@example.com"}

	assert.True(t, users.CreateUser(p))
	assert.Equal(t, 1, users.Len())
	assert.True(t, users.CreateUser(p))
	assert.Equal(t, 2, users.Len())
}

func TestDeleteUserSignalsExistence(t *testing.T) {
	var users Users
	assert.False(t, users.DeleteUser(entity.DeleteUserParam{UserID: "missing"}))

	users.CreateUser(entity.CreateUserParam{ID: "3", Name: "emi", Email: "e"})
	users.CreateUser(entity.CreateUserParam{ID: "4", Name: "ken", Email: "k"})

	assert.True(t, users.DeleteUser(entity.DeleteUserParam{UserID: "3"}))
	assert.Equal(t, 1, users.Len())
	_, ok := users.Get("3")
	assert.False(t, ok)

	assert.False(t, users.DeleteUser(entity.DeleteUserParam{UserID: "3"}))
}

func TestDeleteUserRemovesDuplicates(t *testing.T) {
	var users Users
	users.CreateUser(entity.CreateUserParam{ID: "3", Name: "a", Email: "a"})
	users.CreateUser(entity.CreateUserParam{ID: "4", Name: "b", Email: "b"})
	users.CreateUser(entity.CreateUserParam{ID: "3", Name: "c", Email: "c"})

	assert.True(t, users.DeleteUser(entity.DeleteUserParam{UserID: "3"}))
	assert.Equal(t, []entity.User{{ID: "4", Name: "b", Email: "b"}}, users.All())
}

func TestUpdateUserPartialFields(t *testing.T) {
	var users Users
	users.CreateUser(entity.CreateUserParam{ID: "3", Name: "emi", Email: "emi@example.com"})

	ok := users.UpdateUser(entity.UpdateUserParam{UserID: "3", NewName: strPtr("emi2")})
	require.True(t, ok)

	u, found := users.Get("3")
	require.True(t, found)
	assert.Equal(t, "emi2", u.Name)
	assert.Equal(t, "emi@example.com", u.Email)

	ok = users.UpdateUser(entity.UpdateUserParam{UserID: "3", NewEmail: strPtr("")})
	require.True(t, ok)
	u, _ = users.Get("3")
	assert.Equal(t, "", u.Email)
	assert.Equal(t, "emi2", u.Name)

	assert.False(t, users.UpdateUser(entity.UpdateUserParam{UserID: "9", NewName: strPtr("x")}))
}

func TestUsersAllIsACopy(t *testing.T) {
	var users Users
	users.CreateUser(entity.CreateUserParam{ID: "3", Name: "emi", Email: "e"})
	all := users.All()
	all[0].Name = "changed"

	u, _ := users.Get("3")
	assert.Equal(t, "emi", u.Name)
}

func TestBuildings(t *testing.T) {
	var buildings Buildings
	assert.False(t, buildings.DeleteBuilding(entity.DeleteBuildingParam{BuildingID: "b1"}))
	assert.False(t, buildings.UpdateBuilding(entity.UpdateBuildingParam{BuildingID: "b1"}))

	assert.True(t, buildings.AddBuilding(entity.AddBuildingParam{
		ID: "b1", Name: "Tower", Address: "1 Main St", Residents: []string{"3", "ghost"},
	}))
	assert.True(t, buildings.AddBuilding(entity.AddBuildingParam{ID: "b2", Name: "Annex", Address: "2 Main St"}))
	assert.Equal(t, 2, buildings.Len())

	empty := []string{}
	ok := buildings.UpdateBuilding(entity.UpdateBuildingParam{
		BuildingID: "b1", NewAddress: strPtr("9 Side St"), NewResidents: &empty,
	})
	require.True(t, ok)

	b, found := buildings.Get("b1")
	require.True(t, found)
	assert.Equal(t, "Tower", b.Name)
	assert.Equal(t, "9 Side St", b.Address)
	assert.Empty(t, b.Residents)

	assert.True(t, buildings.DeleteBuilding(entity.DeleteBuildingParam{BuildingID: "b1"}))
	assert.Equal(t, []string{"b2"}, ids(buildings.All()))
}

func TestAddBuildingCopiesResidents(t *testing.T) {
	var buildings Buildings
	residents := []string{"3"}
	buildings.AddBuilding(entity.AddBuildingParam{ID: "b1", Name: "T", Address: "A", Residents: residents})
	residents[0] = "9"

	b, _ := buildings.Get("b1")
	assert.Equal(t, []string{"3"}, b.Residents)
}

func ids(bs []entity.Building) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.ID
	}
	return out
}
