package command

import (
	"fmt"
	"strings"

	"github.com/emberfell/skirmish/internal/game/combat"
	"github.com/emberfell/skirmish/internal/game/ruleset"
)

// Intent is a combat command parsed down to names. The game server
// resolves names against the arena and the actor's pack to build the
// combat.Request it submits.
type Intent struct {
	Kind combat.ActionKind
	// TargetName names the combatant the action is aimed at. Empty for
	// use means the actor targets themselves.
	TargetName string
	// RecipientName names the combatant receiving a stunt's effect.
	// Empty means the actor.
	RecipientName string
	// ItemName names the item to use or wield, matched against the
	// actor's pack.
	ItemName string
	// Advantage is true for boost, false for stunt/foil.
	Advantage bool
	// StuntAbility is the ability the stunt is performed with.
	StuntAbility ruleset.Ability
	// DefenseAbility is the ability the defender resists with.
	DefenseAbility ruleset.Ability
}

// ParseIntent maps a resolved combat command and its arguments to an
// Intent.
//
// Precondition: handler must be one of the combat handler identifiers.
// Postcondition: Returns a populated Intent, or an error whose message is
// the usage line to show the player.
func ParseIntent(handler string, args []string) (Intent, error) {
	switch handler {
	case HandlerHold:
		return Intent{Kind: combat.KindHold}, nil

	case HandlerFlee:
		return Intent{Kind: combat.KindFlee}, nil

	case HandlerAttack:
		if len(args) == 0 {
			return Intent{}, fmt.Errorf("usage: attack <target>")
		}
		return Intent{
			Kind:       combat.KindAttack,
			TargetName: strings.Join(args, " "),
		}, nil

	case HandlerStunt:
		// Impose disadvantage on an enemy's next action against you.
		ability, rest, err := parseStuntArgs(args, "stunt <ability> <target> [vs <ability>]")
		if err != nil {
			return Intent{}, err
		}
		target, defense, err := parseDefense(rest, ability, "stunt <ability> <target> [vs <ability>]")
		if err != nil {
			return Intent{}, err
		}
		return Intent{
			Kind:           combat.KindStunt,
			RecipientName:  target,
			Advantage:      false,
			StuntAbility:   ability,
			DefenseAbility: defense,
		}, nil

	case HandlerBoost:
		// Gain (or grant an ally) advantage against a target.
		ability, rest, err := parseStuntArgs(args, "boost <ability> <target> [for <ally>]")
		if err != nil {
			return Intent{}, err
		}
		target, recipient := splitKeyword(rest, "for")
		if target == "" {
			return Intent{}, fmt.Errorf("usage: boost <ability> <target> [for <ally>]")
		}
		return Intent{
			Kind:           combat.KindStunt,
			TargetName:     target,
			RecipientName:  recipient,
			Advantage:      true,
			StuntAbility:   ability,
			DefenseAbility: ability,
		}, nil

	case HandlerUse:
		if len(args) == 0 {
			return Intent{}, fmt.Errorf("usage: use <item> [on <target>]")
		}
		item, target := splitKeyword(args, "on")
		if item == "" {
			return Intent{}, fmt.Errorf("usage: use <item> [on <target>]")
		}
		return Intent{
			Kind:       combat.KindUseItem,
			ItemName:   item,
			TargetName: target,
		}, nil

	case HandlerWield:
		if len(args) == 0 {
			return Intent{}, fmt.Errorf("usage: wield <item>")
		}
		return Intent{
			Kind:     combat.KindWield,
			ItemName: strings.Join(args, " "),
		}, nil

	default:
		return Intent{}, fmt.Errorf("not a combat command: %s", handler)
	}
}

// parseStuntArgs reads the leading ability word shared by stunt and boost.
func parseStuntArgs(args []string, usage string) (ruleset.Ability, []string, error) {
	if len(args) < 2 {
		return "", nil, fmt.Errorf("usage: %s", usage)
	}
	ability, ok := ruleset.ParseAbility(args[0])
	if !ok {
		return "", nil, fmt.Errorf("unknown ability %q (usage: %s)", args[0], usage)
	}
	return ability, args[1:], nil
}

// parseDefense splits the target words from an optional trailing
// "vs <ability>" clause, defaulting the defense to the stunt ability.
func parseDefense(args []string, fallback ruleset.Ability, usage string) (string, ruleset.Ability, error) {
	target, defenseWord := splitKeyword(args, "vs")
	if target == "" {
		return "", "", fmt.Errorf("usage: %s", usage)
	}
	if defenseWord == "" {
		return target, fallback, nil
	}
	defense, ok := ruleset.ParseAbility(defenseWord)
	if !ok {
		return "", "", fmt.Errorf("unknown ability %q (usage: %s)", defenseWord, usage)
	}
	return target, defense, nil
}

// splitKeyword splits args at the first occurrence of the keyword,
// joining each side with spaces. The keyword itself is dropped. If the
// keyword is absent the whole input becomes the head.
func splitKeyword(args []string, keyword string) (head, tail string) {
	for i, arg := range args {
		if strings.EqualFold(arg, keyword) {
			return strings.Join(args[:i], " "), strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " "), ""
}
