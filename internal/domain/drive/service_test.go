package drive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	folder, err := env.svc.CreateFolder(ctx, ownerA, CreateFolderInput{
		Name:       "  Taxes  ",
		AssignedTo: []string{memberA1.UserID, memberA1.UserID, " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Taxes", folder.Name)
	assert.Equal(t, ownerA.UserID, folder.CreatedBy)
	assert.Equal(t, familyA, folder.FamilyID)
	assert.Equal(t, []string{memberA1.UserID}, folder.AssignedTo)
	assert.Contains(t, env.repo.folders, folder.ID)

	_, err = env.svc.CreateFolder(ctx, memberA1, CreateFolderInput{Name: "Nope"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.CreateFolder(ctx, loner, CreateFolderInput{Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotInFamily)
}

func TestCreateFolderValidation(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("foreign", familyB, ownerB.UserID, nil)
	ctx := context.Background()

	_, err := env.svc.CreateFolder(ctx, ownerA, CreateFolderInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = env.svc.CreateFolder(ctx, ownerA, CreateFolderInput{Name: "x", ParentID: ptr("foreign")})
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.CreateFolder(ctx, ownerA, CreateFolderInput{Name: "x", AssignedTo: []string{ownerB.UserID}})
	assert.ErrorIs(t, err, ErrInvalidAssignee)

	_, err = env.svc.CreateFolder(ctx, ownerA, CreateFolderInput{Name: "x", SharedWith: []string{"stranger"}})
	assert.ErrorIs(t, err, ErrInvalidShareTarget)

	assert.Empty(t, env.repo.folders["foreign"].AssignedTo)
	assert.Len(t, env.repo.folders, 1)
}

func TestCreateFileDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("docs", familyA, ownerA.UserID, nil)
	ctx := context.Background()

	file, err := env.svc.CreateFile(ctx, ownerA, CreateFileInput{
		Name:       "Passport",
		StorageKey: "blob-1",
		Size:       42,
		MediaType:  "image/jpeg",
		FolderID:   ptr("docs"),
		AssignedTo: ptr(memberA1.UserID),
		Tags:       []string{"travel", "id", "travel", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Passport", file.OriginalName)
	assert.Equal(t, ownerA.UserID, file.UploadedBy)
	assert.Equal(t, []string{memberA1.UserID}, file.AssignedTo)
	assert.Equal(t, []string{"id", "travel"}, file.Tags)
	assert.Equal(t, "docs", *file.FolderID)

	_, err = env.svc.CreateFile(ctx, ownerA, CreateFileInput{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = env.svc.CreateFile(ctx, ownerA, CreateFileInput{Name: "x", StorageKey: "k", Size: -1})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = env.svc.CreateFile(ctx, ownerA, CreateFileInput{Name: "x", StorageKey: "k", FolderID: ptr("missing")})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = env.svc.CreateFile(ctx, memberA1, CreateFileInput{Name: "x", StorageKey: "k"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRenameRequiresAuthoringOwner(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("docs", familyA, ownerA.UserID, nil)
	env.putFolder("legacy", familyA, "former-owner", nil)
	env.putFile("f1", familyA, ownerA.UserID, nil, func(f *File) {
		f.Tags = []string{"keep"}
	})
	ctx := context.Background()

	folder, err := env.svc.RenameFolder(ctx, ownerA, "docs", "Documents")
	require.NoError(t, err)
	assert.Equal(t, "Documents", folder.Name)
	assert.Equal(t, "Documents", env.repo.folders["docs"].Name)

	_, err = env.svc.RenameFolder(ctx, ownerA, "legacy", "Mine now")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.RenameFolder(ctx, memberA1, "docs", "Hacked")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.RenameFolder(ctx, ownerB, "docs", "Cross family")
	assert.ErrorIs(t, err, ErrFolderNotFound)

	file, err := env.svc.RenameFile(ctx, ownerA, "f1", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", file.Name)
	assert.Equal(t, []string{"keep"}, file.Tags)
}

func TestMutationsWriteOnlyTheirColumns(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("a", familyA, ownerA.UserID, nil)
	env.putFolder("b", familyA, ownerA.UserID, ptr("a"))
	env.putFile("f1", familyA, ownerA.UserID, ptr("a"))
	ctx := context.Background()

	_, err := env.svc.RenameFolder(ctx, ownerA, "b", "Renamed")
	require.NoError(t, err)
	_, err = env.svc.MoveFolder(ctx, ownerA, "b", nil)
	require.NoError(t, err)
	_, err = env.svc.UpdateFolderAssignment(ctx, ownerA, "b", []string{memberA1.UserID})
	require.NoError(t, err)
	_, err = env.svc.UpdateFolderSharing(ctx, ownerA, "b", Sharing{WithFamily: true})
	require.NoError(t, err)
	_, err = env.svc.RenameFile(ctx, ownerA, "f1", "Renamed.pdf")
	require.NoError(t, err)
	_, err = env.svc.MoveFile(ctx, ownerA, "f1", nil)
	require.NoError(t, err)
	_, err = env.svc.UpdateFileTags(ctx, ownerA, "f1", []string{"tax"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{ColumnName},
		{ColumnParent},
		{ColumnAssignedTo},
		{ColumnSharedWithFamily, ColumnSharedWith},
		{ColumnName},
		{ColumnFolder},
		{ColumnTags},
	}, env.repo.updates)
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("a", familyA, ownerA.UserID, nil)
	env.putFolder("b", familyA, ownerA.UserID, ptr("a"))
	env.putFolder("c", familyA, ownerA.UserID, ptr("b"))
	ctx := context.Background()

	_, err := env.svc.MoveFolder(ctx, ownerA, "a", ptr("a"))
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, err, ErrFolderSelfMove)

	_, err = env.svc.MoveFolder(ctx, ownerA, "a", ptr("c"))
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.ErrorIs(t, err, ErrFolderCycle)

	_, err = env.svc.MoveFolder(ctx, ownerA, "a", ptr("b"))
	assert.ErrorIs(t, err, ErrFolderCycle)

	assert.Nil(t, env.repo.folders["a"].ParentID)
	assert.Equal(t, "a", *env.repo.folders["b"].ParentID)
	assert.Equal(t, "b", *env.repo.folders["c"].ParentID)
}

func TestMoveFolderSequencesStayAcyclic(t *testing.T) {
	env := newTestEnv(t)
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		env.putFolder(id, familyA, ownerA.UserID, nil)
	}
	ctx := context.Background()

	for _, source := range ids {
		for _, target := range ids {
			_, _ = env.svc.MoveFolder(ctx, ownerA, source, ptr(target))

			for _, id := range ids {
				seen := map[string]struct{}{}
				current := env.repo.folders[id]
				for current.ParentID != nil {
					_, looped := seen[current.ID]
					require.False(t, looped, "cycle through %s after moving %s under %s", id, source, target)
					seen[current.ID] = struct{}{}
					current = env.repo.folders[*current.ParentID]
				}
			}
		}
	}
}

func TestMoveFolderToRootAndAcrossFamilies(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("a", familyA, ownerA.UserID, nil)
	env.putFolder("b", familyA, ownerA.UserID, ptr("a"))
	env.putFolder("foreign", familyB, ownerB.UserID, nil)
	ctx := context.Background()

	folder, err := env.svc.MoveFolder(ctx, ownerA, "b", nil)
	require.NoError(t, err)
	assert.Nil(t, folder.ParentID)
	assert.Greater(t, env.repo.locks, 0)

	_, err = env.svc.MoveFolder(ctx, ownerA, "b", ptr("foreign"))
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = env.svc.MoveFolder(ctx, memberA1, "b", ptr("a"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMoveFolderRejectsCorruptedAncestry(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("x", familyA, ownerA.UserID, ptr("y"))
	env.putFolder("y", familyA, ownerA.UserID, ptr("x"))
	env.putFolder("m", familyA, ownerA.UserID, nil)
	ctx := context.Background()

	_, err := env.svc.MoveFolder(ctx, ownerA, "m", ptr("x"))
	assert.ErrorIs(t, err, ErrCorruptTree)
	assert.Nil(t, env.repo.folders["m"].ParentID)
}

func TestMoveFileRoundTripKeepsMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("src", familyA, ownerA.UserID, nil)
	env.putFolder("dst", familyA, ownerA.UserID, nil)
	env.putFile("f1", familyA, ownerA.UserID, ptr("src"), func(f *File) {
		f.Name = "Report"
		f.Tags = []string{"q1", "work"}
		f.AssignedTo = []string{memberA1.UserID}
	})
	ctx := context.Background()

	moved, err := env.svc.MoveFile(ctx, ownerA, "f1", ptr("dst"))
	require.NoError(t, err)
	assert.Equal(t, "dst", *moved.FolderID)

	back, err := env.svc.MoveFile(ctx, ownerA, "f1", ptr("src"))
	require.NoError(t, err)
	assert.Equal(t, "src", *back.FolderID)
	assert.Equal(t, "Report", back.Name)
	assert.Equal(t, []string{"q1", "work"}, back.Tags)
	assert.Equal(t, []string{memberA1.UserID}, back.AssignedTo)

	root, err := env.svc.MoveFile(ctx, ownerA, "f1", nil)
	require.NoError(t, err)
	assert.Nil(t, root.FolderID)

	_, err = env.svc.MoveFile(ctx, ownerA, "f1", ptr("missing"))
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Nil(t, env.repo.files["f1"].FolderID)
}

func TestDeleteFolderPromotesChildren(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("parent", familyA, ownerA.UserID, nil)
	env.putFolder("target", familyA, ownerA.UserID, ptr("parent"))
	env.putFolder("sub", familyA, ownerA.UserID, ptr("target"))
	env.putFile("f1", familyA, ownerA.UserID, ptr("target"))
	env.putFile("f2", familyA, ownerA.UserID, ptr("target"))
	before := len(env.repo.folders) + len(env.repo.files)

	keys, err := env.svc.DeleteFolder(context.Background(), ownerA, "target", false)
	require.NoError(t, err)
	assert.Empty(t, keys)

	assert.NotContains(t, env.repo.folders, "target")
	assert.Equal(t, "parent", *env.repo.folders["sub"].ParentID)
	assert.Equal(t, "parent", *env.repo.files["f1"].FolderID)
	assert.Equal(t, "parent", *env.repo.files["f2"].FolderID)
	assert.Equal(t, before-1, len(env.repo.folders)+len(env.repo.files))
}

func TestDeleteRootFolderPromotesChildrenToRoot(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("target", familyA, ownerA.UserID, nil)
	env.putFolder("sub", familyA, ownerA.UserID, ptr("target"))
	env.putFile("f1", familyA, ownerA.UserID, ptr("target"))

	_, err := env.svc.DeleteFolder(context.Background(), ownerA, "target", false)
	require.NoError(t, err)
	assert.Nil(t, env.repo.folders["sub"].ParentID)
	assert.Nil(t, env.repo.files["f1"].FolderID)
}

func TestDeleteFolderWithContents(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("parent", familyA, ownerA.UserID, nil)
	env.putFolder("target", familyA, ownerA.UserID, ptr("parent"))
	env.putFolder("sub", familyA, ownerA.UserID, ptr("target"))
	env.putFile("f1", familyA, ownerA.UserID, ptr("target"))
	env.putFile("f2", familyA, ownerA.UserID, ptr("target"))
	env.putFile("outside", familyA, ownerA.UserID, ptr("parent"))

	keys, err := env.svc.DeleteFolder(context.Background(), ownerA, "target", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"key-f1", "key-f2"}, keys)

	assert.NotContains(t, env.repo.folders, "target")
	assert.NotContains(t, env.repo.folders, "sub")
	assert.NotContains(t, env.repo.files, "f1")
	assert.NotContains(t, env.repo.files, "f2")
	assert.Contains(t, env.repo.files, "outside")
	assert.Contains(t, env.repo.folders, "parent")
}

func TestDeleteFolderWithContentsIsRecursive(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("top", familyA, ownerA.UserID, nil)
	env.putFolder("mid", familyA, ownerA.UserID, ptr("top"))
	env.putFolder("leaf", familyA, ownerA.UserID, ptr("mid"))
	env.putFile("deep", familyA, ownerA.UserID, ptr("leaf"))
	env.putFile("shallow", familyA, ownerA.UserID, ptr("top"))

	keys, err := env.svc.DeleteFolder(context.Background(), ownerA, "top", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"key-deep", "key-shallow"}, keys)
	assert.Empty(t, env.repo.folders)
	assert.Empty(t, env.repo.files)
}

func TestDeleteFolderForbiddenLeavesTreeUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("target", familyA, ownerA.UserID, nil)
	env.putFile("f1", familyA, ownerA.UserID, ptr("target"))

	_, err := env.svc.DeleteFolder(context.Background(), memberA1, "target", true)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.DeleteFolder(context.Background(), ownerB, "target", true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, env.repo.folders, "target")
	assert.Contains(t, env.repo.files, "f1")
}

func TestDeleteFileReturnsStorageKey(t *testing.T) {
	env := newTestEnv(t)
	env.putFile("f1", familyA, ownerA.UserID, nil)

	_, err := env.svc.DeleteFile(context.Background(), memberA1, "f1")
	assert.ErrorIs(t, err, ErrForbidden)

	key, err := env.svc.DeleteFile(context.Background(), ownerA, "f1")
	require.NoError(t, err)
	assert.Equal(t, "key-f1", key)
	assert.Empty(t, env.repo.files)

	_, err = env.svc.DeleteFile(context.Background(), ownerA, "f1")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestUpdateFolderAssignment(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("docs", familyA, ownerA.UserID, nil)
	ctx := context.Background()

	folder, err := env.svc.UpdateFolderAssignment(ctx, ownerA, "docs", []string{memberA2.UserID, memberA1.UserID})
	require.NoError(t, err)
	assert.Equal(t, []string{memberA1.UserID, memberA2.UserID}, folder.AssignedTo)

	folder, err = env.svc.UpdateFolderAssignment(ctx, ownerA, "docs", []string{})
	require.NoError(t, err)
	assert.Nil(t, folder.AssignedTo)

	_, err = env.svc.UpdateFolderAssignment(ctx, ownerA, "docs", []string{ownerB.UserID})
	assert.ErrorIs(t, err, ErrInvalidAssignee)

	_, err = env.svc.UpdateFolderAssignment(ctx, memberA1, "docs", []string{memberA1.UserID})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateFileAssignment(t *testing.T) {
	env := newTestEnv(t)
	env.putFile("f1", familyA, ownerA.UserID, nil)
	ctx := context.Background()

	file, err := env.svc.UpdateFileAssignment(ctx, ownerA, "f1", ptr(memberA1.UserID))
	require.NoError(t, err)
	assert.Equal(t, []string{memberA1.UserID}, file.AssignedTo)

	file, err = env.svc.UpdateFileAssignment(ctx, ownerA, "f1", nil)
	require.NoError(t, err)
	assert.Nil(t, file.AssignedTo)

	_, err = env.svc.UpdateFileAssignees(ctx, ownerA, "f1", []string{memberA1.UserID, memberA2.UserID})
	assert.ErrorIs(t, err, ErrTooManyFileAssignees)
	assert.ErrorIs(t, err, ErrInvalidOperation)

	file, err = env.svc.UpdateFileAssignees(ctx, ownerA, "f1", []string{memberA2.UserID, memberA2.UserID})
	require.NoError(t, err)
	assert.Equal(t, []string{memberA2.UserID}, file.AssignedTo)
}

func TestUpdateSharingByAssignee(t *testing.T) {
	env := newTestEnv(t)
	env.putFolder("docs", familyA, ownerA.UserID, nil, func(f *Folder) {
		f.AssignedTo = []string{memberA1.UserID}
	})
	env.putFile("f1", familyA, ownerA.UserID, nil, func(f *File) {
		f.AssignedTo = []string{memberA1.UserID}
		f.SharedWithFamily = true
	})
	ctx := context.Background()

	folder, err := env.svc.UpdateFolderSharing(ctx, memberA1, "docs", Sharing{With: []string{memberA2.UserID}})
	require.NoError(t, err)
	assert.False(t, folder.SharedWithFamily)
	assert.Equal(t, []string{memberA2.UserID}, folder.SharedWith)

	file, err := env.svc.UpdateFileSharing(ctx, memberA1, "f1", Sharing{WithFamily: false, With: nil})
	require.NoError(t, err)
	assert.False(t, file.SharedWithFamily)
	assert.Nil(t, file.SharedWith)

	_, err = env.svc.UpdateFolderSharing(ctx, memberA2, "docs", Sharing{WithFamily: true})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.UpdateFileSharing(ctx, memberA1, "f1", Sharing{With: []string{"stranger"}})
	assert.ErrorIs(t, err, ErrInvalidShareTarget)

	folder, err = env.svc.UpdateFolderSharing(ctx, ownerA, "docs", Sharing{WithFamily: true})
	require.NoError(t, err)
	assert.True(t, folder.SharedWithFamily)
	assert.Nil(t, folder.SharedWith)
}

func TestUpdateFileTags(t *testing.T) {
	env := newTestEnv(t)
	env.putFile("f1", familyA, ownerA.UserID, nil, func(f *File) {
		f.AssignedTo = []string{memberA1.UserID}
	})
	ctx := context.Background()

	file, err := env.svc.UpdateFileTags(ctx, ownerA, "f1", []string{" b ", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, file.Tags)

	_, err = env.svc.UpdateFileTags(ctx, memberA1, "f1", []string{"c"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, []string{"a", "b"}, env.repo.files["f1"].Tags)
}

func TestOperationsAreRecorded(t *testing.T) {
	env := newTestEnv(t)
	env.putFile("f1", familyA, ownerA.UserID, nil)

	_, _ = env.svc.RenameFile(context.Background(), ownerA, "f1", "ok")
	_, _ = env.svc.RenameFile(context.Background(), memberA1, "f1", "no")
	_, _ = env.svc.RenameFile(context.Background(), ownerA, "missing", "no")

	assert.Equal(t, 1, env.recorder.operations["rename_file:ok"])
	assert.Equal(t, 1, env.recorder.operations["rename_file:forbidden"])
	assert.Equal(t, 1, env.recorder.operations["rename_file:not_found"])
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "invalid_operation", resultLabel(ErrFolderCycle))
	assert.Equal(t, "not_found", resultLabel(ErrParentNotFound))
	assert.Equal(t, "error", resultLabel(errors.New("boom")))
}
