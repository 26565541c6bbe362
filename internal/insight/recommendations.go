package insight

// Recommendations are produced by deterministic template lookup keyed on
// (predicted label, top flaw). Nothing here is generative: identical
// input always yields identical text.

type recKey struct {
	label string
	flaw  string
}

var recommendationTemplates = map[recKey][]string{
	{"too_steep", "swing_plane_deviation"}: {
		"Flatten your downswing by feeling the club drop behind you before rotating through.",
		"Practice the headcover-under-the-arms drill to shallow the plane.",
	},
	{"too_steep", "lead_arm_bend"}: {
		"Keep the lead arm extended at the top; a folded lead arm lifts the club onto a steep plane.",
	},
	{"too_steep", "tempo"}: {
		"Slow the takeaway; a rushed backswing tends to throw the club over the top and steep.",
	},
	{"too_flat", "swing_plane_deviation"}: {
		"Steepen your shoulder turn at address; a flat plane often starts with an overly upright posture.",
		"Rehearse half swings keeping the club head above the hands through takeaway.",
	},
	{"too_flat", "hip_rotation_timing"}: {
		"Delay hip rotation slightly so the club does not get trapped behind your body.",
	},
	{"on_plane", "tempo"}: {
		"Plane looks good; smooth the 3:1 backswing-to-downswing tempo to make it repeatable.",
	},
	{"on_plane", "head_movement"}: {
		"Plane looks good; quiet the head to keep the low point consistent.",
	},
	{"on_plane", "balance"}: {
		"Plane looks good; reduce lateral sway to strike the ball more consistently.",
	},
}

var fallbackByLabel = map[string][]string{
	"on_plane": {
		"Swing plane is on target. Keep rehearsing your current move to groove it.",
	},
	"too_steep": {
		"Your swing plane is steeper than ideal. Work on shallowing the club in transition.",
	},
	"too_flat": {
		"Your swing plane is flatter than ideal. Work on a more upright arm swing in the backswing.",
	},
}

// Recommend returns the coaching text for a classification and its
// ranked flaws. The top non-pass flaw selects the template; the label
// fallback covers uncovered combinations.
func Recommend(label string, flaws []Flaw) []string {
	for _, f := range flaws {
		if f.Severity == SeverityPass {
			continue
		}
		if recs, ok := recommendationTemplates[recKey{label: label, flaw: f.Name}]; ok {
			return recs
		}
		break // only the top flaw selects a template
	}
	if recs, ok := fallbackByLabel[label]; ok {
		return recs
	}
	return []string{"No specific recommendation available for this swing."}
}
