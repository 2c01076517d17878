package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestMergeDedupesActiveWins(t *testing.T) {
	active := []Course{{ID: "1", Name: "Math", TeacherName: "Wang"}, {ID: "2", Name: "Physics", TeacherName: "Li"}}
	archived := []Course{{ID: "2", Name: "Physics (old)", TeacherName: "Li"}, {ID: "3", Name: "Art", TeacherName: "Zhao"}}

	got := Merge(active, archived)
	if len(got) != 3 {
		t.Fatalf("expected 3 courses, got %d: %+v", len(got), got)
	}
	if got[1].Name != "Physics" {
		t.Fatalf("expected active record to win, got %q", got[1].Name)
	}
	if got[2].ID != "3" {
		t.Fatalf("expected archived-only course appended, got %+v", got[2])
	}
}

func TestMergeEmptyLists(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	got := Merge(nil, []Course{{ID: "9"}})
	if len(got) != 1 || got[0].ID != "9" {
		t.Fatalf("unexpected merge %v", got)
	}
}

func TestMergeAssignsDistinctFolders(t *testing.T) {
	active := []Course{{ID: "3134428", Name: "Circuits", TeacherName: "Li"}}
	archived := []Course{
		{ID: "2871001", Name: "Circuits", TeacherName: "Li"},
		{ID: "5", Name: "A/B", TeacherName: "Zhao"},
		{ID: "6", Name: "A_B", TeacherName: "Zhao"},
		{ID: "7", Name: "circuits", TeacherName: "li"},
	}

	got := Merge(active, archived)
	want := []string{"Circuits-Li", "Circuits-Li-2871001", "A_B-Zhao", "A_B-Zhao-6", "circuits-li-7"}
	for i, c := range got {
		if c.FolderName() != want[i] {
			t.Fatalf("course %s folder = %q, want %q", c.ID, c.FolderName(), want[i])
		}
	}
	if got[0].LegacyFolderName() != "Circuits" {
		t.Fatalf("first claimant keeps legacy migration, got %q", got[0].LegacyFolderName())
	}
	if got[1].LegacyFolderName() != "" {
		t.Fatalf("renamed course must not adopt the legacy folder, got %q", got[1].LegacyFolderName())
	}

	lesson := Lesson{Title: "Intro", Ordinal: 1}
	if lesson.NamePrefix(got[0]) == lesson.NamePrefix(got[1]) {
		t.Fatalf("namesake courses share prefix %q", lesson.NamePrefix(got[0]))
	}
}

func TestAssignFoldersIsStable(t *testing.T) {
	courses := []Course{
		{ID: "1", Name: "Signals", TeacherName: "Xu"},
		{ID: "2", Name: "Signals", TeacherName: "Xu"},
		{ID: "3", Name: "Signals", TeacherName: "Xu-2"},
	}
	AssignFolders(courses)
	first := []string{courses[0].FolderName(), courses[1].FolderName(), courses[2].FolderName()}
	AssignFolders(courses)
	for i, c := range courses {
		if c.FolderName() != first[i] {
			t.Fatalf("reassignment changed %s: %q -> %q", c.ID, first[i], c.FolderName())
		}
	}
	if first[1] != "Signals-Xu-2" || first[2] != "Signals-Xu-2-3" {
		t.Fatalf("unexpected folders %v", first)
	}
}

type stubCourses struct {
	active, archived []Course
	err              error
}

func (s stubCourses) ListActive(context.Context) ([]Course, error)   { return s.active, s.err }
func (s stubCourses) ListArchived(context.Context) ([]Course, error) { return s.archived, nil }

func TestFetchCourses(t *testing.T) {
	got, err := FetchCourses(context.Background(), stubCourses{
		active:   []Course{{ID: "1"}},
		archived: []Course{{ID: "1"}, {ID: "2"}},
	})
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	boom := errors.New("boom")
	if _, err := FetchCourses(context.Background(), stubCourses{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestFilterCourses(t *testing.T) {
	courses := []Course{{Name: "Linear Algebra"}, {Name: "Physics"}, {Name: "Algebraic Topology"}}
	got := FilterCourses(courses, NewMatcher("Algebra", false))
	if len(got) != 2 || got[0].Name != "Linear Algebra" || got[1].Name != "Algebraic Topology" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if got := FilterCourses(courses, NewMatcher("algebra", false)); len(got) != 0 {
		t.Fatalf("filter should be case-sensitive by default, got %+v", got)
	}
	if got := FilterCourses(courses, NewMatcher("algebra", true)); len(got) != 2 {
		t.Fatalf("case-insensitive filter should match 2, got %+v", got)
	}
	if got := FilterCourses(courses, Matcher{}); len(got) != 3 {
		t.Fatalf("empty matcher should keep all, got %d", len(got))
	}
}

func TestFilterLessonsAssignsOrdinals(t *testing.T) {
	// Newest first, as the server returns them.
	lessons := []Lesson{
		{CoursewareID: "d", Title: "Lab 2"},
		{CoursewareID: "c", Title: "Lecture 3"},
		{CoursewareID: "b", Title: "Lab 1"},
		{CoursewareID: "a", Title: "Lecture 1"},
	}
	got := FilterLessons(lessons, NewMatcher("Lecture", false))
	if len(got) != 2 {
		t.Fatalf("expected 2 lessons, got %+v", got)
	}
	if got[0].CoursewareID != "c" || got[0].Ordinal != 2 {
		t.Fatalf("unexpected first lesson %+v", got[0])
	}
	if got[1].CoursewareID != "a" || got[1].Ordinal != 1 {
		t.Fatalf("unexpected second lesson %+v", got[1])
	}

	all := FilterLessons(lessons, Matcher{})
	if all[0].Ordinal != 4 || all[3].Ordinal != 1 {
		t.Fatalf("unexpected ordinals %+v", all)
	}
}

func TestNamePrefixes(t *testing.T) {
	course := Course{ID: "1", Name: "Circuits", TeacherName: "Xu"}
	lesson := Lesson{Title: "R8: three/phase", Ordinal: 8}
	prefix := lesson.NamePrefix(course)
	if prefix != "Circuits-Xu/8-R8_ three_phase" {
		t.Fatalf("unexpected lesson prefix %q", prefix)
	}
	if got := PresentationPrefix(prefix, 0, "L1_Intro"); got != "Circuits-Xu/8-R8_ three_phase-0-L1_Intro" {
		t.Fatalf("unexpected deck prefix %q", got)
	}
	if course.LegacyFolderName() != "Circuits" {
		t.Fatalf("unexpected legacy folder %q", course.LegacyFolderName())
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"  plain ":   "plain",
		"a/b\\c":     "a_b_c",
		"..":         "untitled",
		"":           "untitled",
		"tab\there":  "tabhere",
		"电路-徐明伟": "电路-徐明伟",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
