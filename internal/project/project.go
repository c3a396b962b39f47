package project

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlanning    Status = "Planning"
	StatusActive      Status = "Active"
	StatusMaintenance Status = "Maintenance"
	StatusArchived    Status = "Archived"
)

var Statuses = []Status{StatusPlanning, StatusActive, StatusMaintenance, StatusArchived}

// Project is a client engagement with its hosting details.
type Project struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Name            string
	Description     string
	Status          Status
	TechStack       []string
	Credentials     map[string]string
	DomainName      string
	DomainExpiry    *time.Time
	HostingProvider string
	HostingRenewal  *time.Time
	CreatedAt       time.Time
}

type RenewalKind string

const (
	RenewalDomain  RenewalKind = "domain"
	RenewalHosting RenewalKind = "hosting"
)

type Renewal struct {
	Project *Project
	Kind    RenewalKind
	Due     time.Time
}

// RenewalsDue lists domain and hosting renewals of non-archived projects due
// before now+window, overdue ones included, soonest first.
func RenewalsDue(projects []*Project, now time.Time, window time.Duration) []Renewal {
	limit := now.Add(window)

	var out []Renewal

	for _, p := range projects {
		if p.Status == StatusArchived {
			continue
		}

		if p.DomainExpiry != nil && !p.DomainExpiry.After(limit) {
			out = append(out, Renewal{Project: p, Kind: RenewalDomain, Due: *p.DomainExpiry})
		}

		if p.HostingRenewal != nil && !p.HostingRenewal.After(limit) {
			out = append(out, Renewal{Project: p, Kind: RenewalHosting, Due: *p.HostingRenewal})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Due.Before(out[j].Due)
	})

	return out
}
