package drive

import (
	"sort"
	"strings"
)

// The functions in this file decide which folders and files an actor sees.
// They are pure: callers load a family snapshot and pass it in.
//
// "Mine" for an owner is everything they created. For a member it is every
// item assigned to them plus every unassigned (family) item. "Shared" is the
// rest of the family filtered by the sharing flags, so no item is ever
// returned by both.

func MyFolders(actor Actor, folders []Folder, scope Scope) []Folder {
	result := make([]Folder, 0)
	if !actor.InFamily() {
		return result
	}
	for _, folder := range folders {
		if folder.FamilyID != actor.FamilyID || !scope.Contains(folder.ParentID) {
			continue
		}
		if isMine(actor, folder.CreatedBy, folder.AssignedTo) {
			result = append(result, folder)
		}
	}
	sortFolders(result)
	return result
}

func SharedFolders(actor Actor, folders []Folder, scope Scope) []Folder {
	result := make([]Folder, 0)
	if !actor.InFamily() {
		return result
	}
	for _, folder := range folders {
		if folder.FamilyID != actor.FamilyID || !scope.Contains(folder.ParentID) {
			continue
		}
		if !isSharedCandidate(actor, folder.CreatedBy, folder.AssignedTo) {
			continue
		}
		if sharedWith(folder.Sharing(), actor.UserID) {
			result = append(result, folder)
		}
	}
	sortFolders(result)
	return result
}

func MyFiles(actor Actor, files []File, scope Scope) []File {
	result := make([]File, 0)
	if !actor.InFamily() {
		return result
	}
	for _, file := range files {
		if file.FamilyID != actor.FamilyID || !scope.Contains(file.FolderID) {
			continue
		}
		if isMine(actor, file.UploadedBy, file.AssignedTo) {
			result = append(result, file)
		}
	}
	sortFiles(result)
	return result
}

// SharedFiles also surfaces files whose direct parent folder is shared with
// the actor. Inheritance is one level deep; folders map by id.
func SharedFiles(actor Actor, files []File, folders map[string]*Folder, scope Scope) []File {
	result := make([]File, 0)
	if !actor.InFamily() {
		return result
	}
	for _, file := range files {
		if file.FamilyID != actor.FamilyID || !scope.Contains(file.FolderID) {
			continue
		}
		if !isSharedCandidate(actor, file.UploadedBy, file.AssignedTo) {
			continue
		}
		if sharedWith(file.Sharing(), actor.UserID) {
			result = append(result, file)
			continue
		}
		if file.FolderID == nil {
			continue
		}
		parent, ok := folders[*file.FolderID]
		if ok && parent.FamilyID == actor.FamilyID && sharedWith(parent.Sharing(), actor.UserID) {
			result = append(result, file)
		}
	}
	sortFiles(result)
	return result
}

// MatchesFile reports whether a file view matches a free-text query over its
// name, tags, folder name and assignee names.
func MatchesFile(view FileView, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	candidates := make([]string, 0, 3+len(view.File.Tags)+len(view.AssigneeNames))
	candidates = append(candidates, view.File.Name, view.File.OriginalName, view.FolderName)
	candidates = append(candidates, view.File.Tags...)
	candidates = append(candidates, view.AssigneeNames...)
	for _, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate), query) {
			return true
		}
	}
	return false
}

func isMine(actor Actor, createdBy string, assignees []string) bool {
	if actor.IsOwner() {
		return createdBy == actor.UserID
	}
	return len(assignees) == 0 || containsID(assignees, actor.UserID)
}

func isSharedCandidate(actor Actor, createdBy string, assignees []string) bool {
	if isMine(actor, createdBy, assignees) {
		return false
	}
	if createdBy == actor.UserID || containsID(assignees, actor.UserID) {
		return false
	}
	return true
}

func sharedWith(sharing Sharing, userID string) bool {
	return sharing.WithFamily || containsID(sharing.With, userID)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func sortFolders(folders []Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].ID < folders[j].ID
	})
}

func sortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].ID < files[j].ID
	})
}
