package class

import (
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/samber/lo"
	"strings"
	"time"
)

var (
	ErrClassNotFound   = domain.NewError(domain.ErrNotFound, "class not found")
	ErrTrainerNotFound = domain.NewError(domain.ErrNotFound, "trainer not found")
	ErrTeamNotFound    = domain.NewError(domain.ErrNotFound, "team not found")
	ErrMemberNotFound  = domain.NewError(domain.ErrNotFound, "member not found")

	ErrClassExists           = domain.NewError(domain.ErrInvalidOperation, "class already exists")
	ErrCapacityExceeded      = domain.NewError(domain.ErrInvalidOperation, "class is full")
	ErrNoTrainer             = domain.NewError(domain.ErrInvalidOperation, "class has no trainer assigned")
	ErrTeamAlreadyAssigned   = domain.NewError(domain.ErrInvalidOperation, "team is already assigned to class")
	ErrTeamNotAssigned       = domain.NewError(domain.ErrInvalidOperation, "team is not assigned to class")
	ErrMemberAlreadyEnrolled = domain.NewError(domain.ErrInvalidOperation, "member is already enrolled in class")
	ErrMemberNotEnrolled     = domain.NewError(domain.ErrInvalidOperation, "member is not enrolled in class")

	ErrBlankClassID    = domain.NewError(domain.ErrValidation, "class id must not be blank")
	ErrBlankName       = domain.NewError(domain.ErrValidation, "class name must not be blank")
	ErrInvalidCapacity = domain.NewError(domain.ErrValidation, "capacity must be greater than 0")
)

const (
	EventScheduled       = "class.scheduled"
	EventDeleted         = "class.deleted"
	EventTrainerAssigned = "class.trainer_assigned"
	EventTrainerRemoved  = "class.trainer_removed"
	EventTeamAdded       = "class.team_added"
	EventTeamRemoved     = "class.team_removed"
	EventMemberAdded     = "class.member_added"
	EventMemberRemoved   = "class.member_removed"
)

// EventTypes lists every event a class can emit.
var EventTypes = []string{
	EventScheduled,
	EventDeleted,
	EventTrainerAssigned,
	EventTrainerRemoved,
	EventTeamAdded,
	EventTeamRemoved,
	EventMemberAdded,
	EventMemberRemoved,
}

type ClassID string
type TrainerID string
type TeamID string
type MemberID string

// Class is a scheduled fitness class. Trainer, team and member ids reference
// entities owned by other services and are only ever stored as ids.
type Class struct {
	domain.Aggregate `diff:"-"`
	ClassID          ClassID    `diff:"-"`
	Name             string     `diff:"name"`
	Schedule         time.Time  `diff:"scheduled_at"`
	Capacity         int        `diff:"capacity"`
	TrainerID        *TrainerID `diff:"trainer_id"`
	Teams            []TeamID   `diff:"-"`
	Members          []MemberID `diff:"-"`
	CreatedAt        time.Time  `diff:"-"`
	UpdatedAt        time.Time  `diff:"updated_at"`
}

func New(
	classID ClassID,
	name string,
	schedule time.Time,
	capacity int,
	trainerID *TrainerID,
	teams []TeamID,
	members []MemberID,
) (*Class, error) {
	now := time.Now().UTC()
	c := &Class{
		ClassID:   classID,
		Name:      name,
		Schedule:  schedule.UTC(),
		Capacity:  capacity,
		TrainerID: trainerID,
		Teams:     append(make([]TeamID, 0, len(teams)), teams...),
		Members:   append(make([]MemberID, 0, len(members)), members...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.PushEvent(ScheduledEvent{
		At:       now,
		ClassID:  c.ClassID,
		Name:     c.Name,
		Schedule: c.Schedule,
	})
	return c, nil
}

// Validate checks every aggregate invariant.
func (c *Class) Validate() error {
	if strings.TrimSpace(string(c.ClassID)) == "" {
		return ErrBlankClassID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrBlankName
	}
	if c.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if dup := lo.FindDuplicates(c.Teams); len(dup) != 0 {
		return fmt.Errorf("%w: %s", ErrTeamAlreadyAssigned, dup[0])
	}
	if dup := lo.FindDuplicates(c.Members); len(dup) != 0 {
		return fmt.Errorf("%w: %s", ErrMemberAlreadyEnrolled, dup[0])
	}
	if len(c.Members) > c.Capacity {
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, c.Capacity)
	}
	return nil
}

func (c *Class) HasTrainer() bool {
	return c.TrainerID != nil
}

func (c *Class) IsTrainedBy(trainerID TrainerID) bool {
	return c.TrainerID != nil && *c.TrainerID == trainerID
}

func (c *Class) HasTeam(teamID TeamID) bool {
	return lo.Contains(c.Teams, teamID)
}

func (c *Class) HasMember(memberID MemberID) bool {
	return lo.Contains(c.Members, memberID)
}

func (c *Class) IsFull() bool {
	return len(c.Members) >= c.Capacity
}

// EnsureSeat fails when no seat is left. Callers use it to reject an enrollment
// before paying for a remote member lookup.
func (c *Class) EnsureSeat() error {
	if c.IsFull() {
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, c.Capacity)
	}
	return nil
}

// AssignTrainer replaces the current trainer, if any.
func (c *Class) AssignTrainer(trainerID TrainerID) {
	c.TrainerID = &trainerID
	c.touch()
	c.pushChange(EventTrainerAssigned, string(trainerID))
}

func (c *Class) RemoveTrainer() error {
	if c.TrainerID == nil {
		return ErrNoTrainer
	}
	removed := *c.TrainerID
	c.TrainerID = nil
	c.touch()
	c.pushChange(EventTrainerRemoved, string(removed))
	return nil
}

func (c *Class) AddTeam(teamID TeamID) error {
	if c.HasTeam(teamID) {
		return fmt.Errorf("%w: %s", ErrTeamAlreadyAssigned, teamID)
	}
	c.Teams = append(c.Teams, teamID)
	c.touch()
	c.pushChange(EventTeamAdded, string(teamID))
	return nil
}

func (c *Class) RemoveTeam(teamID TeamID) error {
	if !c.HasTeam(teamID) {
		return fmt.Errorf("%w: %s", ErrTeamNotAssigned, teamID)
	}
	c.Teams = lo.Without(c.Teams, teamID)
	c.touch()
	c.pushChange(EventTeamRemoved, string(teamID))
	return nil
}

func (c *Class) AddMember(memberID MemberID) error {
	if err := c.EnsureSeat(); err != nil {
		return err
	}
	if c.HasMember(memberID) {
		return fmt.Errorf("%w: %s", ErrMemberAlreadyEnrolled, memberID)
	}
	c.Members = append(c.Members, memberID)
	c.touch()
	c.pushChange(EventMemberAdded, string(memberID))
	return nil
}

func (c *Class) RemoveMember(memberID MemberID) error {
	if !c.HasMember(memberID) {
		return fmt.Errorf("%w: %s", ErrMemberNotEnrolled, memberID)
	}
	c.Members = lo.Without(c.Members, memberID)
	c.touch()
	c.pushChange(EventMemberRemoved, string(memberID))
	return nil
}

// MarkDeleted records the deletion event; the storage removes the row.
func (c *Class) MarkDeleted() {
	c.PushEvent(DeletedEvent{
		At:      time.Now().UTC(),
		ClassID: c.ClassID,
	})
}

// Clone returns a deep copy without buffered events.
func (c *Class) Clone() *Class {
	var trainerID *TrainerID
	if c.TrainerID != nil {
		id := *c.TrainerID
		trainerID = &id
	}
	return &Class{
		ClassID:   c.ClassID,
		Name:      c.Name,
		Schedule:  c.Schedule,
		Capacity:  c.Capacity,
		TrainerID: trainerID,
		Teams:     append(make([]TeamID, 0, len(c.Teams)), c.Teams...),
		Members:   append(make([]MemberID, 0, len(c.Members)), c.Members...),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (c *Class) touch() {
	c.UpdatedAt = time.Now().UTC()
}

func (c *Class) pushChange(kind, ref string) {
	c.PushEvent(ChangedEvent{
		Kind:    kind,
		At:      c.UpdatedAt,
		ClassID: c.ClassID,
		Ref:     ref,
	})
}

type ScheduledEvent struct {
	At       time.Time
	ClassID  ClassID
	Name     string
	Schedule time.Time
}

func (e ScheduledEvent) Type() string {
	return EventScheduled
}

func (e ScheduledEvent) PublishedAt() time.Time {
	return e.At
}

type DeletedEvent struct {
	At      time.Time
	ClassID ClassID
}

func (e DeletedEvent) Type() string {
	return EventDeleted
}

func (e DeletedEvent) PublishedAt() time.Time {
	return e.At
}

// ChangedEvent covers trainer, team and member changes. Ref holds the id that
// was assigned or removed.
type ChangedEvent struct {
	Kind    string
	At      time.Time
	ClassID ClassID
	Ref     string
}

func (e ChangedEvent) Type() string {
	return e.Kind
}

func (e ChangedEvent) PublishedAt() time.Time {
	return e.At
}
