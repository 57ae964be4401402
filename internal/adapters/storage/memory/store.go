// Package memory es el storage en memoria usado en dev y tests.
//
// Un único Store guarda las cuatro entidades bajo el mismo lock, así los borrados en
// cascada, la protección de vacunas en uso y la unicidad de dosis son atómicos.
// Las relaciones (Owner de la mascota, Pet/Vaccine del evento) se guardan por ID y se
// cargan en cada lectura.
package memory

import (
	"strings"
	"sync"

	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/domain/pets"
	"pet-vaccination-schedule/internal/domain/vaccinations"
	"pet-vaccination-schedule/internal/domain/vaccines"
)

type Store struct {
	mu sync.RWMutex

	owners   map[string]owners.Owner
	pets     map[string]pets.Pet
	vaccines map[string]vaccines.Vaccine
	events   map[string]vaccinations.Event
}

func NewStore() *Store {
	return &Store{
		owners:   make(map[string]owners.Owner),
		pets:     make(map[string]pets.Pet),
		vaccines: make(map[string]vaccines.Vaccine),
		events:   make(map[string]vaccinations.Event),
	}
}

func (s *Store) Owners() owners.Repository { return &ownerRepo{s: s} }
func (s *Store) Pets() pets.Repository { return &petRepo{s: s} }
func (s *Store) Vaccines() vaccines.Repository { return &vaccineRepo{s: s} }
func (s *Store) Vaccinations() vaccinations.Repository { return &vaccinationRepo{s: s} }

// loadPet copia la mascota con su Owner. Llamar con el lock tomado.
func (s *Store) loadPet(p pets.Pet) pets.Pet {
	if o, ok := s.owners[p.OwnerID]; ok {
		p.Owner = &o
	}
	return p
}

// loadEvent copia el evento con Pet (y Owner) y Vaccine. Llamar con el lock tomado.
func (s *Store) loadEvent(e vaccinations.Event) vaccinations.Event {
	if p, ok := s.pets[e.PetID]; ok {
		p = s.loadPet(p)
		e.Pet = &p
	}
	if v, ok := s.vaccines[e.VaccineID]; ok {
		e.Vaccine = &v
	}
	return e
}

// deletePetLocked borra la mascota y sus vacunaciones.
func (s *Store) deletePetLocked(petID string) {
	for id, e := range s.events {
		if e.PetID == petID {
			delete(s.events, id)
		}
	}
	delete(s.pets, petID)
}

func contains(haystack, q string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(q))
}
