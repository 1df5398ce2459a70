// Package command provides the line parser, command registry, and the
// combat intent grammar for the Telnet front end.
package command

// Categories for organizing commands in help output.
const (
	CategoryMovement      = "movement"
	CategoryWorld         = "world"
	CategoryCombat        = "combat"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
)

// Handler identifiers mapping commands to game server handlers.
const (
	HandlerMove   = "move"
	HandlerLook   = "look"
	HandlerExits  = "exits"
	HandlerSay    = "say"
	HandlerWho    = "who"
	HandlerQuit   = "quit"
	HandlerHelp   = "help"
	HandlerAttack = "attack"
	HandlerStunt  = "stunt"
	HandlerBoost  = "boost"
	HandlerUse    = "use"
	HandlerWield  = "wield"
	HandlerFlee   = "flee"
	HandlerHold   = "hold"
	HandlerStatus = "status"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command for help output.
	Category string
	// Handler names the game server handler for this command.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Movement commands. Bare direction words move through the
		// matching exit; "go" takes any exit name.
		{Name: "go", Aliases: nil, Help: "Move through an exit (go <direction>)", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "north", Aliases: []string{"n"}, Help: "Move north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Move south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Move east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Move west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "up", Aliases: []string{"u"}, Help: "Move up", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "down", Aliases: []string{"d"}, Help: "Move down", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "out", Aliases: nil, Help: "Move out", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "in", Aliases: nil, Help: "Move in", Category: CategoryMovement, Handler: HandlerMove},

		// World commands
		{Name: "look", Aliases: []string{"l"}, Help: "Look around the current arena", Category: CategoryWorld, Handler: HandlerLook},
		{Name: "exits", Aliases: nil, Help: "List available exits", Category: CategoryWorld, Handler: HandlerExits},

		// Combat commands
		{Name: "attack", Aliases: []string{"att", "kill"}, Help: "Attack a target with your wielded weapon", Category: CategoryCombat, Handler: HandlerAttack},
		{Name: "stunt", Aliases: []string{"foil"}, Help: "Impose disadvantage on an enemy (stunt <ability> <target>)", Category: CategoryCombat, Handler: HandlerStunt},
		{Name: "boost", Aliases: nil, Help: "Gain advantage against a target (boost <ability> <target> [for <ally>])", Category: CategoryCombat, Handler: HandlerBoost},
		{Name: "use", Aliases: nil, Help: "Use an item (use <item> [on <target>])", Category: CategoryCombat, Handler: HandlerUse},
		{Name: "wield", Aliases: []string{"draw"}, Help: "Wield a weapon from your pack", Category: CategoryCombat, Handler: HandlerWield},
		{Name: "flee", Aliases: []string{"run"}, Help: "Attempt to flee the battle", Category: CategoryCombat, Handler: HandlerFlee},
		{Name: "hold", Aliases: []string{"pass", "wait"}, Help: "Hold your action this turn", Category: CategoryCombat, Handler: HandlerHold},
		{Name: "status", Aliases: []string{"stat"}, Help: "Show the battle status report", Category: CategoryCombat, Handler: HandlerStatus},

		// Communication commands
		{Name: "say", Aliases: nil, Help: "Say something to the arena", Category: CategoryCommunication, Handler: HandlerSay},

		// System commands
		{Name: "who", Aliases: nil, Help: "List players in the arena", Category: CategorySystem, Handler: HandlerWho},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Disconnect from the game", Category: CategorySystem, Handler: HandlerQuit},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
	}
}

// IsMovementCommand reports whether the command name is a bare movement
// direction.
func IsMovementCommand(name string) bool {
	switch name {
	case "north", "south", "east", "west", "up", "down", "out", "in":
		return true
	default:
		return false
	}
}
