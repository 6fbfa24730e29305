package device

// Role is the electrical role of one pin of a flattened node.
type Role string

const (
	RoleIO        Role = "IO"
	RoleDrain     Role = "drain"
	RoleGate      Role = "gate"
	RoleSource    Role = "source"
	RoleSubstrate Role = "substrate"
	RolePassive   Role = "passive"
	RoleAnode     Role = "N+"
	RoleCathode   Role = "N-"
	RoleCollector Role = "collector"
	RoleBase      Role = "base"
	RoleEmitter   Role = "emitter"
	RoleHBeta     Role = "hbeta"
)

// Auxiliary reports whether the role is a body/auxiliary terminal that
// downstream connectivity analysis usually ignores.
func (r Role) Auxiliary() bool {
	return r == RoleSubstrate || r == RoleHBeta
}

// NetClass classifies a net by its name.
type NetClass int

const (
	NetSignal NetClass = iota
	NetSupply
	NetGround
)

func (c NetClass) String() string {
	switch c {
	case NetSupply:
		return "supply"
	case NetGround:
		return "ground"
	}
	return "signal"
}
