package model

import "testing"

func catalogQuiz(title, course, program string, year int, section, category string, difficulty Difficulty) Quiz {
	return Quiz{
		Title:      title,
		Course:     course,
		Program:    program,
		Year:       year,
		Section:    section,
		Category:   category,
		Difficulty: difficulty,
	}
}

func TestFilterQuizzes(t *testing.T) {
	catalog := []Quiz{
		catalogQuiz("DSA", "B.Tech", "CSE", 2, "A", "Programming", DifficultyMedium),
		catalogQuiz("Networks", "B.Tech", "ECE", 3, "B", "Core", DifficultyHard),
		catalogQuiz("GK", "All", "All", 0, "All", "General", DifficultyEasy),
		catalogQuiz("DBMS", "BCA", "All", 2, "A", "Programming", DifficultyMedium),
	}

	cases := []struct {
		name     string
		criteria FilterCriteria
		want     []string
	}{
		{
			name:     "no criteria matches everything",
			criteria: FilterCriteria{},
			want:     []string{"DSA", "Networks", "GK", "DBMS"},
		},
		{
			name:     "course filter honors quiz wildcard",
			criteria: FilterCriteria{Course: "B.Tech"},
			want:     []string{"DSA", "Networks", "GK"},
		},
		{
			name:     "criterion All matches every quiz",
			criteria: FilterCriteria{Course: "All"},
			want:     []string{"DSA", "Networks", "GK", "DBMS"},
		},
		{
			name:     "year zero on quiz is a wildcard",
			criteria: FilterCriteria{Year: 2},
			want:     []string{"DSA", "GK", "DBMS"},
		},
		{
			name:     "combined axes intersect",
			criteria: FilterCriteria{Course: "BCA", Program: "CSE", Year: 2},
			want:     []string{"GK", "DBMS"},
		},
		{
			name:     "difficulty matches exactly",
			criteria: FilterCriteria{Difficulty: "Medium"},
			want:     []string{"DSA", "DBMS"},
		},
		{
			name:     "category and section intersect",
			criteria: FilterCriteria{Category: "Programming", Section: "A"},
			want:     []string{"DSA", "DBMS"},
		},
		{
			name:     "no match",
			criteria: FilterCriteria{Course: "MBA", Difficulty: "Hard"},
			want:     []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterQuizzes(catalog, tc.criteria)
			if len(got) != len(tc.want) {
				t.Fatalf("want %d quizzes %v, got %d", len(tc.want), tc.want, len(got))
			}
			for i, title := range tc.want {
				if got[i].Title != title {
					t.Fatalf("position %d: want %s, got %s", i, title, got[i].Title)
				}
			}
		})
	}
}

func TestFilterPreservesInput(t *testing.T) {
	catalog := []Quiz{
		catalogQuiz("A", "B.Tech", "CSE", 1, "A", "Programming", DifficultyEasy),
		catalogQuiz("B", "BCA", "All", 2, "B", "General", DifficultyHard),
	}
	_ = FilterQuizzes(catalog, FilterCriteria{Course: "BCA"})
	if catalog[0].Title != "A" || catalog[1].Title != "B" {
		t.Fatal("filter mutated the catalog slice")
	}
}
