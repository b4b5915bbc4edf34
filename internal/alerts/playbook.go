package alerts

import "strings"

// Containment playbooks by broad species kind. Unknown kinds fall back to
// the plant protocol.
var playbooks = map[string]string{
	"plant": `Standard Protocol for Invasive Plant Outbreak:
1. Verify species ID via expert review or DNA if needed.
2. Map the extent of the infestation (use satellite NDVI + ground survey).
3. Assess density: Is it a single patch or widespread?
4. Containment:
   - Mechanical removal (hand-pulling, mowing) for small patches.
   - Chemical treatment (herbicide) for large monocultures, if permitted.
5. Disposal: Do not compost invasive seeds. Bag and landfill or burn.
6. Monitor site for 3-5 years for regrowth.
`,
	"insect": `Standard Protocol for Invasive Insect Outbreak:
1. Quarantine the affected area immediately. Restrict movement of wood/soil.
2. Deploy pheromone traps to determine spread radius.
3. Biological control: Introduce approved predators/parasitoids if available.
4. Chemical control: Systemic insecticides for high-value trees/crops.
5. Remove and chip/burn infested host material.
6. Notify state/federal agricultural agencies.
`,
	"aquatic": `Standard Protocol for Invasive Aquatic Species:
1. Close affected water body to boats/recreation to prevent spread.
2. Inspect all outgoing vessels (Clean, Drain, Dry).
3. Mechanical harvesting or benthic barriers for plants.
4. Chemical treatment (aquatic-safe herbicides/pesticides) if contained.
5. Electrofishing or netting for invasive fish.
6. Long-term monitoring of dissolved oxygen and native species recovery.
`,
}

// Playbook returns the containment protocol for the species kind.
func Playbook(kind string) string {
	if text, ok := playbooks[strings.ToLower(kind)]; ok {
		return text
	}
	return playbooks["plant"]
}
