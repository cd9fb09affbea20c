// Package git provides the Git Gateway: the orchestrator's sole means of
// touching worktrees, branches, and commits in the repository under management.
package git

// WorktreeInfo describes a single entry from `git worktree list --porcelain`.
type WorktreeInfo struct {
	Path   string
	Branch string
	Exists bool
}

// Status summarizes the working tree as reported by `git status --porcelain`.
type Status struct {
	Staged     int
	Unstaged   int
	Untracked  int
	HasChanges bool
}

// WorktreeOperations creates, lists, and removes git worktrees for features.
type WorktreeOperations interface {
	// WorktreeCreate runs `git worktree add -b feature/<feature> worktrees/<feature>`.
	WorktreeCreate(feature string) error
	// WorktreeList parses `git worktree list --porcelain`.
	WorktreeList() ([]WorktreeInfo, error)
	// WorktreeRemove removes the worktree for feature, optionally forcing.
	WorktreeRemove(feature string, force bool) error
}

// BranchOperations deletes branches, respecting the protected-branch list.
type BranchOperations interface {
	// DeleteLocalBranch deletes the local feature branch. Refuses protected names.
	DeleteLocalBranch(branch string, force bool) error
	// DeleteRemoteBranch deletes the branch on origin. Refuses protected names.
	DeleteRemoteBranch(branch string) error
}

// DiffOperations reports the state of the working tree.
type DiffOperations interface {
	// Status returns staged/unstaged/untracked counts.
	Status(workDir string) (Status, error)
}

// CommitOperations stages and commits changes.
type CommitOperations interface {
	// StageAll runs `git add -A`.
	StageAll(workDir string) error
	// Commit commits staged changes, returning the short hash.
	// "nothing to commit" is treated as a successful no-op (empty hash).
	Commit(workDir, message string) (hash string, err error)
	// CountFeatureCommits counts commits on HEAD not reachable from base.
	// Falls back to "master" if base does not exist, then to all of HEAD.
	CountFeatureCommits(workDir, base string) (int, error)
}

// Runner composes every Git Gateway sub-operation into one interface.
type Runner interface {
	WorktreeOperations
	BranchOperations
	DiffOperations
	CommitOperations
}

// ProtectedBranches are never deleted, regardless of force.
var ProtectedBranches = []string{"main", "master", "develop", "development", "release"}
