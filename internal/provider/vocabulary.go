package provider

import "github.com/mkoziy/paddock/internal/models"

// sessionTypes maps provider display names to internal session codes.
var sessionTypes = map[string]models.SessionType{
	"Practice 1":        models.SessionFP1,
	"Practice 2":        models.SessionFP2,
	"Practice 3":        models.SessionFP3,
	"Free Practice 1":   models.SessionFP1,
	"Free Practice 2":   models.SessionFP2,
	"Free Practice 3":   models.SessionFP3,
	"Qualifying":        models.SessionQ,
	"Sprint Qualifying": models.SessionSQ,
	"Sprint Shootout":   models.SessionSQ,
	"Sprint":            models.SessionS,
	"Sprint Race":       models.SessionS,
	"Race":              models.SessionR,
}

// sessionNames is the reverse table used when asking the provider for a code.
var sessionNames = map[models.SessionType][]string{
	models.SessionFP1: {"Practice 1", "Free Practice 1"},
	models.SessionFP2: {"Practice 2", "Free Practice 2"},
	models.SessionFP3: {"Practice 3", "Free Practice 3"},
	models.SessionQ:   {"Qualifying"},
	models.SessionSQ:  {"Sprint Qualifying", "Sprint Shootout"},
	models.SessionS:   {"Sprint", "Sprint Race"},
	models.SessionR:   {"Race"},
}

// SessionType translates a provider display name. Unknown names pass through
// unchanged so the persistence layer can reject them.
func SessionType(name string) models.SessionType {
	if t, ok := sessionTypes[name]; ok {
		return t
	}
	return models.SessionType(name)
}

// SessionNames returns the provider display names that map to code.
// A code that is not in the vocabulary is returned as its own name.
func SessionNames(code string) []string {
	if names, ok := sessionNames[models.SessionType(code)]; ok {
		return names
	}
	return []string{code}
}
