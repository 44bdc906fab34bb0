package drive

import (
	"errors"
	"fmt"
)

var (
	ErrNotInFamily      = errors.New("not in family")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
)

var (
	ErrFolderNotFound       = fmt.Errorf("folder %w", ErrNotFound)
	ErrFileNotFound         = fmt.Errorf("file %w", ErrNotFound)
	ErrParentNotFound       = fmt.Errorf("parent folder %w", ErrNotFound)
	ErrFolderSelfMove       = fmt.Errorf("%w: folder cannot be its own parent", ErrInvalidOperation)
	ErrFolderCycle          = fmt.Errorf("%w: folder cannot be moved into its own subtree", ErrInvalidOperation)
	ErrCorruptTree          = fmt.Errorf("%w: folder ancestry is corrupted", ErrInvalidOperation)
	ErrInvalidAssignee      = fmt.Errorf("%w: assignee is not a family member", ErrInvalidOperation)
	ErrTooManyFileAssignees = fmt.Errorf("%w: a file accepts at most one assignee", ErrInvalidOperation)
	ErrInvalidShareTarget   = fmt.Errorf("%w: share target is not a family member", ErrInvalidOperation)
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
}
