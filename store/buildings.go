package store

import (
	"slices"

	"entity-rpc/entity"
)

type Buildings struct {
	buildings []entity.Building
}

// AddBuilding appends a new building. Ids are not checked for duplicates.
func (s *Buildings) AddBuilding(p entity.AddBuildingParam) bool {
	s.buildings = append(s.buildings, entity.Building{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Residents: slices.Clone(p.Residents),
	})
	return true
}

// DeleteBuilding removes every building with the id. It reports false when
// no building with that id existed.
func (s *Buildings) DeleteBuilding(p entity.DeleteBuildingParam) bool {
	before := len(s.buildings)
	s.buildings = slices.DeleteFunc(s.buildings, func(b entity.Building) bool { return b.ID == p.BuildingID })
	return len(s.buildings) < before
}

// UpdateBuilding applies the fields set in p to the first building with the id.
func (s *Buildings) UpdateBuilding(p entity.UpdateBuildingParam) bool {
	i := s.index(p.BuildingID)
	if i < 0 {
		return false
	}
	if p.NewName != nil {
		s.buildings[i].Name = *p.NewName
	}
	if p.NewAddress != nil {
		s.buildings[i].Address = *p.NewAddress
	}
	if p.NewResidents != nil {
		s.buildings[i].Residents = slices.Clone(*p.NewResidents)
	}
	return true
}

func (s *Buildings) Get(id string) (entity.Building, bool) {
	if i := s.index(id); i >= 0 {
		return s.buildings[i], true
	}
	return entity.Building{}, false
}

func (s *Buildings) Len() int {
	return len(s.buildings)
}

func (s *Buildings) All() []entity.Building {
	return slices.Clone(s.buildings)
}

func (s *Buildings) index(id string) int {
	return slices.IndexFunc(s.buildings, func(b entity.Building) bool { return b.ID == id })
}
