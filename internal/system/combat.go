package system

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridmud/server/internal/core/system"
	"github.com/gridmud/server/internal/scripting"
	"github.com/gridmud/server/internal/world"
)

// swingExhaustion is the exhaustion cost of one melee round.
const swingExhaustion = 5

// CombatSystem swings one melee round for every engaged mob each combat
// interval. Scripts may override the round formula; the built-in one runs
// otherwise. Phase 2 (Update), after AI and before wandering.
type CombatSystem struct {
	w        *world.World
	lua      *scripting.Engine
	log      *zap.Logger
	interval time.Duration
	elapsed  time.Duration
}

func NewCombatSystem(w *world.World, lua *scripting.Engine, interval time.Duration, log *zap.Logger) *CombatSystem {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &CombatSystem{w: w, lua: lua, interval: interval, log: log}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(dt time.Duration) {
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed -= s.interval

	for _, attacker := range s.w.CombatQueue.Snapshot() {
		s.swing(attacker)
	}

	// Wimpy checks run after the full round so a mauled mob bolts before the
	// next one.
	for _, m := range s.w.CombatQueue.Snapshot() {
		if m.Destroyed() {
			continue
		}
		m.AttemptWimpyFlee()
	}
}

func (s *CombatSystem) swing(attacker *world.Mob) {
	if attacker.Destroyed() {
		return
	}
	target := attacker.CombatTarget()
	if target == nil {
		return
	}
	if target.Destroyed() || target.Health() <= 0 || target.Room() != attacker.Room() {
		attacker.Send("Your foe is gone.", world.GroupCombat)
		attacker.SetCombatTarget(nil)
		return
	}
	if attacker.Exhaustion() >= world.MaxExhaustion {
		attacker.Send("You are too exhausted to swing.", world.GroupCombat)
		return
	}
	attacker.AdjustExhaustion(swingExhaustion)

	verb := "hit"
	dtype := world.DamagePhysical
	weaponPower := 0.0
	if w := attacker.Weapon(); w != nil {
		verb = w.HitType().Verb
		dtype = w.HitType().Damage
		weaponPower = w.AttackPower()
	}

	hitRoll := s.w.RNG().Intn(100)
	critRoll := s.w.RNG().Intn(100)
	spreadRoll := s.w.RNG().Intn(51)

	res := s.resolveRound(attacker, target, weaponPower, hitRoll, critRoll, spreadRoll)
	room := attacker.Room()
	targetName := target.Display()
	if !res.Hit {
		attacker.Send(fmt.Sprintf("You swing at %s and miss.", targetName), world.GroupCombat)
		target.Send(fmt.Sprintf("%s swings at you and misses.", attacker.Display()), world.GroupCombat)
		if room != nil {
			room.Act(attacker, fmt.Sprintf("{User} swings at %s and misses.", targetName), world.GroupCombat, target)
		}
		return
	}

	// Read the name before the blow lands; a killing blow destroys the target.
	dealt := target.Damage(attacker, res.Damage, dtype)
	prefix := ""
	if res.Crit {
		prefix = "Critical! "
	}
	attacker.Send(fmt.Sprintf("%sYou %s %s for %d damage.", prefix, verb, targetName, dealt), world.GroupCombat)
	target.Send(fmt.Sprintf("%s%s %s you for %d damage.", prefix, attacker.Display(), thirdPerson(verb), dealt), world.GroupCombat)
	if room != nil {
		room.Act(attacker, fmt.Sprintf("{User} %s %s.", thirdPerson(verb), targetName), world.GroupCombat, target)
	}
}

// resolveRound asks Lua for the round result and falls back to the built-in
// formula: to-hit from accuracy against avoidance, damage from attack power
// on a 75%..125% spread less defense and resilience, crits doubling.
func (s *CombatSystem) resolveRound(attacker, target *world.Mob, weaponPower float64, hitRoll, critRoll, spreadRoll int) scripting.MeleeResult {
	atk := attacker.Secondary()
	def := target.Secondary()

	if s.lua != nil {
		res, ok := s.lua.CalcMeleeRound(scripting.MeleeContext{
			AttackerLevel:      attacker.Level(),
			AttackerPower:      atk.AttackPower + weaponPower,
			AttackerAccuracy:   atk.Accuracy,
			AttackerCrit:       atk.CritRate,
			AttackerExhaustion: attacker.Exhaustion(),
			TargetLevel:        target.Level(),
			TargetDefense:      def.Defense,
			TargetResilience:   def.Resilience,
			TargetAvoidance:    def.Avoidance,
			HitRoll:            hitRoll,
			CritRoll:           critRoll,
			SpreadRoll:         spreadRoll,
		})
		if ok {
			return res
		}
	}

	chance := 70 + int(atk.Accuracy) - int(def.Avoidance)
	if chance < 5 {
		chance = 5
	}
	if chance > 95 {
		chance = 95
	}
	if hitRoll >= chance {
		return scripting.MeleeResult{}
	}

	raw := (atk.AttackPower + weaponPower) * float64(75+spreadRoll) / 100
	raw -= def.Defense/2 + def.Resilience/4
	crit := float64(critRoll) < atk.CritRate
	if crit {
		raw *= 2
	}
	dmg := int(math.Round(raw))
	if dmg < 1 {
		dmg = 1
	}
	return scripting.MeleeResult{Hit: true, Crit: crit, Damage: dmg}
}

// thirdPerson conjugates a hit verb for the victim's point of view.
func thirdPerson(verb string) string {
	switch {
	case strings.HasSuffix(verb, "sh"), strings.HasSuffix(verb, "ch"),
		strings.HasSuffix(verb, "s"), strings.HasSuffix(verb, "x"), strings.HasSuffix(verb, "z"):
		return verb + "es"
	default:
		return verb + "s"
	}
}
