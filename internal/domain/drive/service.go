package drive

import (
	"context"
	"errors"
	"sort"
	"strings"

	"family-drive-go/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const MaxNameLength = 255

// Recorder receives drive operation outcomes for metrics.
type Recorder interface {
	ObserveOperation(operation, result string)
	ObserveBulkItem(operation string, status BulkStatus)
}

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string) {}

func (noopRecorder) ObserveBulkItem(string, BulkStatus) {}

type Service struct {
	repo     Repository
	members  MemberDirectory
	recorder Recorder
	log      logger.Logger
}

func NewService(repo Repository, members MemberDirectory, recorder Recorder, log logger.Logger) *Service {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Service{
		repo:     repo,
		members:  members,
		recorder: recorder,
		log:      log,
	}
}

func (s *Service) record(operation string, err error) {
	s.recorder.ObserveOperation(operation, resultLabel(err))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotInFamily):
		return "not_in_family"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidOperation):
		return "invalid_operation"
	default:
		return "error"
	}
}

func requireOwner(actor Actor) error {
	if !actor.InFamily() {
		return ErrNotInFamily
	}
	if !actor.IsOwner() {
		return ErrForbidden
	}
	return nil
}

// requireAuthor allows structural changes only to the owner who created the item.
func requireAuthor(actor Actor, createdBy string) error {
	if err := requireOwner(actor); err != nil {
		return err
	}
	if createdBy != actor.UserID {
		return ErrForbidden
	}
	return nil
}

// requireSharer allows sharing changes to the authoring owner or to any
// current assignee.
func requireSharer(actor Actor, createdBy string, assignees []string) error {
	if !actor.InFamily() {
		return ErrNotInFamily
	}
	if actor.IsOwner() && createdBy == actor.UserID {
		return nil
	}
	if containsID(assignees, actor.UserID) {
		return nil
	}
	return ErrForbidden
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("name is required"),
		validation.RuneLength(1, MaxNameLength).Error("name is too long"),
	)
	if err != nil {
		return "", invalid(err)
	}
	return name, nil
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// normalizeMembers trims and de-duplicates user ids and checks that each one
// belongs to the family. An empty set is returned as nil.
func (s *Service) normalizeMembers(ctx context.Context, familyID string, ids []string, notMember error) ([]string, error) {
	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	names, err := s.members.MemberNames(ctx, familyID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, notMember
		}
	}

	sort.Strings(ids)
	return ids, nil
}

func normalizeTags(tags []string) []string {
	result := normalizeIDs(tags)
	if len(result) == 0 {
		return nil
	}
	sort.Strings(result)
	return result
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
