// Package seed holds the starter exercise catalog used when a user has no
// exercises yet.
package seed

import "github.com/meltforce/doonemore/internal/models"

type entry struct {
	name     string
	category models.ExerciseCategory // empty means models.DefaultCategory
	metrics  []models.ExerciseMetric
}

var (
	strength   = []models.ExerciseMetric{models.MetricWeight, models.MetricReps}
	bodyweight = []models.ExerciseMetric{models.MetricReps}
	timed      = []models.ExerciseMetric{models.MetricTime}
	distance   = []models.ExerciseMetric{models.MetricTime, models.MetricDistance}
	burn       = []models.ExerciseMetric{models.MetricTime, models.MetricCalories}
)

var entries = []entry{
	// Arms
	{"Bicep Curl", models.CategoryArms, strength},
	{"Hammer Curl", models.CategoryArms, strength},
	{"Tricep Extension", models.CategoryArms, strength},
	{"Skull Crusher", models.CategoryArms, strength},
	{"Tricep Dip", models.CategoryArms, bodyweight},
	{"Overhead Press", models.CategoryArms, strength},
	{"Lateral Raise", models.CategoryArms, strength},

	// Legs
	{"Squat", models.CategoryLegs, strength},
	{"Front Squat", models.CategoryLegs, strength},
	{"Deadlift", models.CategoryLegs, strength},
	{"Romanian Deadlift", models.CategoryLegs, strength},
	{"Leg Press", models.CategoryLegs, strength},
	{"Lunge", models.CategoryLegs, strength},
	{"Leg Curl", models.CategoryLegs, strength},
	{"Calf Raise", models.CategoryLegs, strength},
	{"Bodyweight Squat", models.CategoryLegs, bodyweight},

	// Chest (several entries rely on the default category)
	{"Bench Press", "", strength},
	{"Incline Bench Press", "", strength},
	{"Dumbbell Fly", "", strength},
	{"Chest Press Machine", "", strength},
	{"Push Up", "", bodyweight},
	{"Cable Crossover", models.CategoryChest, strength},

	// Back
	{"Pull Up", models.CategoryBack, bodyweight},
	{"Chin Up", models.CategoryBack, bodyweight},
	{"Barbell Row", models.CategoryBack, strength},
	{"Lat Pulldown", models.CategoryBack, strength},
	{"Seated Cable Row", models.CategoryBack, strength},
	{"Back Extension", models.CategoryBack, bodyweight},

	// HIIT
	{"Burpee", models.CategoryHIIT, bodyweight},
	{"Mountain Climber", models.CategoryHIIT, bodyweight},
	{"Jumping Jack", models.CategoryHIIT, bodyweight},
	{"Jump Squat", models.CategoryHIIT, bodyweight},
	{"Plank", models.CategoryHIIT, timed},
	{"Tabata Intervals", models.CategoryHIIT, burn},

	// Cardio
	{"Running", models.CategoryCardio, distance},
	{"Cycling", models.CategoryCardio, distance},
	{"Rowing", models.CategoryCardio, distance},
	{"Swimming", models.CategoryCardio, distance},
	{"Walking", models.CategoryCardio, distance},
	{"Elliptical", models.CategoryCardio, burn},
	{"Stair Climber", models.CategoryCardio, burn},
	{"Jump Rope", models.CategoryCardio, burn},

	// CrossFit
	{"Kettlebell Swing", models.CategoryCrossfit, strength},
	{"Box Jump", models.CategoryCrossfit, bodyweight},
	{"Wall Ball", models.CategoryCrossfit, strength},
}

// Catalog returns the starter exercises in a fixed order. Every call returns
// new values with fresh IDs.
func Catalog() []models.Exercise {
	out := make([]models.Exercise, 0, len(entries))
	for _, e := range entries {
		cat := e.category
		if cat == "" {
			cat = models.DefaultCategory
		}
		out = append(out, models.NewExercise(e.name, e.metrics, cat))
	}
	return out
}
