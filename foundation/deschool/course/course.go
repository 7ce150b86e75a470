// Package course maintains the course definitions and the learner
// registrations. Both live in arenas indexed by their id so iteration is
// always in creation order.
package course

import (
	"github.com/ardanlabs/deschool/foundation/deschool/fail"
	"github.com/ardanlabs/deschool/foundation/deschool/vesting"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Course is a course definition. The fee and schedule never change after
// creation; the scholarship counters are maintained by the scholarship pool.
type Course struct {
	ID                uint64           `json:"id"`
	Fee               *uint256.Int     `json:"fee"`
	Schedule          vesting.Schedule `json:"schedule"`
	URL               string           `json:"url"`
	Creator           common.Address   `json:"creator"`
	Owner             common.Address   `json:"owner"`
	CreatedAt         uint64           `json:"created_at"`
	ScholarsAvailable uint64           `json:"scholars_available"`
	ActiveScholars    uint64           `json:"active_scholars"`
	ScholarshipTotal  *uint256.Int     `json:"scholarship_total"`
	CompletedScholars uint64           `json:"completed_scholars"`
	LastPerpetual     uint64           `json:"last_perpetual"`
	Perpetuated       bool             `json:"perpetuated"`
}

func (c Course) clone() Course {
	c.Fee = c.Fee.Clone()
	c.ScholarshipTotal = c.ScholarshipTotal.Clone()
	return c
}

// Registration is a learner's seat on a course.
type Registration struct {
	ID           uint64         `json:"id"`
	Learner      common.Address `json:"learner"`
	CourseID     uint64         `json:"course_id"`
	BatchID      uint64         `json:"batch_id"`
	RegisteredAt uint64         `json:"registered_at"`
	AmountPaid   *uint256.Int   `json:"amount_paid"`
	Settled      uint64         `json:"settled"`
	Released     *uint256.Int   `json:"released"`
	Scholar      bool           `json:"scholar"`
	Reclaimed    bool           `json:"reclaimed"`
}

func (r Registration) clone() Registration {
	r.AmountPaid = r.AmountPaid.Clone()
	r.Released = r.Released.Clone()
	return r
}

type seat struct {
	learner  common.Address
	courseID uint64
}

// =============================================================================

// Registry owns every course and registration.
type Registry struct {
	courses  []Course
	regs     []Registration
	seats    map[seat]int
	byCourse map[uint64][]int
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seats:    make(map[seat]int),
		byCourse: make(map[uint64][]int),
	}
}

// Clone makes a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	cpy := Registry{
		courses:  make([]Course, len(r.courses)),
		regs:     make([]Registration, len(r.regs)),
		seats:    make(map[seat]int, len(r.seats)),
		byCourse: make(map[uint64][]int, len(r.byCourse)),
	}

	for i, c := range r.courses {
		cpy.courses[i] = c.clone()
	}

	for i, reg := range r.regs {
		cpy.regs[i] = reg.clone()
	}

	for k, v := range r.seats {
		cpy.seats[k] = v
	}

	for k, v := range r.byCourse {
		cpy.byCourse[k] = append([]int(nil), v...)
	}

	return &cpy
}

// NextID returns the id the next course will receive.
func (r *Registry) NextID() uint64 {
	return uint64(len(r.courses))
}

// Create validates and stores a new course.
func (r *Registry) Create(fee *uint256.Int, schedule vesting.Schedule, url string, creator common.Address, owner common.Address, block uint64) (Course, error) {
	if fee == nil || fee.IsZero() {
		return Course{}, fail.New(fail.InvalidInput, "createCourse: fee must be greater than 0")
	}

	if err := schedule.Validate(); err != nil {
		return Course{}, err
	}

	if creator == (common.Address{}) {
		creator = owner
	}

	c := Course{
		ID:               r.NextID(),
		Fee:              fee.Clone(),
		Schedule:         schedule,
		URL:              url,
		Creator:          creator,
		Owner:            owner,
		CreatedAt:        block,
		ScholarshipTotal: new(uint256.Int),
	}
	r.courses = append(r.courses, c)

	return c.clone(), nil
}

// Course returns the course with the id.
func (r *Registry) Course(id uint64) (Course, error) {
	if id >= uint64(len(r.courses)) {
		return Course{}, fail.New(fail.NotFound, "courseId does not exist")
	}
	return r.courses[id].clone(), nil
}

// Courses returns every course in id order.
func (r *Registry) Courses() []Course {
	cpy := make([]Course, len(r.courses))
	for i, c := range r.courses {
		cpy[i] = c.clone()
	}
	return cpy
}

// Update replaces the mutable counters of an existing course.
func (r *Registry) Update(c Course) error {
	if c.ID >= uint64(len(r.courses)) {
		return fail.New(fail.NotFound, "courseId does not exist")
	}

	cur := &r.courses[c.ID]
	cur.ScholarsAvailable = c.ScholarsAvailable
	cur.ActiveScholars = c.ActiveScholars
	cur.ScholarshipTotal = c.ScholarshipTotal.Clone()
	cur.CompletedScholars = c.CompletedScholars
	cur.LastPerpetual = c.LastPerpetual
	cur.Perpetuated = c.Perpetuated

	return nil
}

// =============================================================================

// Register records a new seat on the course. A learner holds at most one
// seat per course, scholar or not.
func (r *Registry) Register(learner common.Address, courseID uint64, batchID uint64, block uint64, amount *uint256.Int, scholar bool) (Registration, error) {
	if courseID >= uint64(len(r.courses)) {
		return Registration{}, fail.New(fail.NotFound, "courseId does not exist")
	}

	key := seat{learner: learner, courseID: courseID}
	if _, exists := r.seats[key]; exists {
		return Registration{}, fail.New(fail.Duplicate, "already registered")
	}

	reg := Registration{
		ID:           uint64(len(r.regs)),
		Learner:      learner,
		CourseID:     courseID,
		BatchID:      batchID,
		RegisteredAt: block,
		AmountPaid:   amount.Clone(),
		Released:     new(uint256.Int),
		Scholar:      scholar,
	}

	idx := len(r.regs)
	r.regs = append(r.regs, reg)
	r.seats[key] = idx
	r.byCourse[courseID] = append(r.byCourse[courseID], idx)

	return reg.clone(), nil
}

// Registration returns the learner's seat on the course.
func (r *Registry) Registration(learner common.Address, courseID uint64) (Registration, error) {
	idx, exists := r.seats[seat{learner: learner, courseID: courseID}]
	if !exists {
		return Registration{}, fail.New(fail.NotParticipant, "not registered to this course")
	}
	return r.regs[idx].clone(), nil
}

// Registrations returns the seats on the course in registration order.
func (r *Registry) Registrations(courseID uint64) []Registration {
	idxs := r.byCourse[courseID]

	cpy := make([]Registration, len(idxs))
	for i, idx := range idxs {
		cpy[i] = r.regs[idx].clone()
	}
	return cpy
}

// Save stores the settlement progress of an existing registration.
func (r *Registry) Save(reg Registration) error {
	if reg.ID >= uint64(len(r.regs)) {
		return fail.New(fail.NotFound, "registration does not exist")
	}

	cur := &r.regs[reg.ID]
	cur.Settled = reg.Settled
	cur.Released = reg.Released.Clone()
	cur.Reclaimed = reg.Reclaimed

	return nil
}
