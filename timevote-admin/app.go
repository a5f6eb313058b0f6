// This is a command line interface for communicating with the timevote
// service.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/util/key"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/app"
	"go.dedis.ch/onet/v3/log"

	timevote "go.dedis.ch/timevote"
	"go.dedis.ch/timevote/lib"
)

var (
	argRoster  = flag.String("roster", "", "path to roster toml file")
	argAdmins  = flag.String("admins", "", "comma-separated list of admin account ids")
	argPin     = flag.String("pin", "", "service pin")
	argKey     = flag.String("key", "", "public key of the authentication server")
	argUser    = flag.Int("user", 0, "acting account id for signed operations")
	argPriv    = flag.String("priv", "", "authentication server private key, hex")
	argMaster  = flag.String("master", "", "master handle returned by link, hex")
	argSession = flag.String("session", "", "path to a session definition toml file; creates and links a session pair")
	argMint    = flag.String("mint", "", "credit an account, format id:amount")
	argTrigger = flag.Uint("trigger", 0, "trigger the reward calculation of a session")
	argAbort   = flag.Uint("abort", 0, "abort a session")
	argShow    = flag.Uint("show", 0, "print the configuration and status of a session")
	argEvents  = flag.Uint("events", 0, "dump the event log of a session (use with -all for every session)")
	argAll     = flag.Bool("all", false, "with -events: dump the full log")
	argGenKey  = flag.Bool("genkey", false, "generate a holder key pair placeholder (G2 point)")
)

// sessionDef mirrors the session definition toml file.
type sessionDef struct {
	Title             string   `toml:"title"`
	Description       string   `toml:"description"`
	Metadata          string   `toml:"metadata"`
	Options           []string `toml:"options"`
	Start             int64    `toml:"start"`
	End               int64    `toml:"end"`
	SharesEnd         int64    `toml:"shares-end"`
	RequiredDeposit   uint64   `toml:"required-deposit"`
	MinShareThreshold int      `toml:"min-share-threshold"`
}

func main() {
	flag.Parse()

	if *argGenKey {
		fmt.Println(lib.RandomHolderKey())
		return
	}

	if *argRoster == "" {
		log.Fatal("roster argument (-roster) is required")
	}
	roster, err := parseRoster(*argRoster)
	if err != nil {
		log.Fatal("cannot parse roster: ", err)
	}
	client := timevote.NewClient(roster)

	switch {
	case *argMint != "":
		user, amount, err := parseMint(*argMint)
		if err != nil {
			log.Fatal("cannot parse mint argument: ", err)
		}
		if *argPin == "" {
			log.Fatal("pin must be set for mint")
		}
		reply, err := client.Mint(*argPin, user, amount)
		if err != nil {
			log.Fatal("mint request: ", err)
		}
		log.Infof("Balance of %d: %d", user, reply.Balance)

	case *argSession != "":
		def, err := loadSession(*argSession)
		if err != nil {
			log.Fatal("cannot load session definition: ", err)
		}
		if err := authenticate(client); err != nil {
			log.Fatal(err)
		}
		reply, err := client.CreateSessionPair(&timevote.CreateSessionPair{
			Title:             def.Title,
			Description:       def.Description,
			Metadata:          def.Metadata,
			Options:           def.Options,
			Start:             def.Start,
			End:               def.End,
			SharesEnd:         def.SharesEnd,
			RequiredDeposit:   def.RequiredDeposit,
			MinShareThreshold: def.MinShareThreshold,
		})
		if err != nil {
			log.Fatal("create session pair request: ", err)
		}
		if err := client.LinkSession(reply.ID); err != nil {
			log.Fatal("link session request: ", err)
		}
		log.Infof("Session pair %d deployed and linked", reply.ID)
		log.Infof("Registry handle: %s", reply.Registry)
		log.Infof(" Session handle: %s", reply.Session)

	case *argTrigger != 0:
		if err := authenticate(client); err != nil {
			log.Fatal(err)
		}
		reply, err := client.TriggerRewardCalculation(uint32(*argTrigger))
		if err != nil {
			log.Fatal("trigger reward calculation request: ", err)
		}
		log.Infof("Rewards calculated, total pool: %d", reply.TotalPool)

	case *argAbort != 0:
		if err := authenticate(client); err != nil {
			log.Fatal(err)
		}
		if err := client.AbortSession(uint32(*argAbort)); err != nil {
			log.Fatal("abort session request: ", err)
		}
		log.Infof("Session %d aborted", *argAbort)

	case *argShow != 0:
		reply, err := client.GetSessionInfo(uint32(*argShow))
		if err != nil {
			log.Fatal("get session info request: ", err)
		}
		s := reply.Session
		fmt.Printf("    Title: %s\n", s.Title)
		fmt.Printf("  Creator: %d\n", s.Creator)
		fmt.Printf("  Options: %v\n", s.Options)
		fmt.Printf("   Window: %d - %d (shares until %d)\n", s.Start, s.End, s.SharesEnd)
		fmt.Printf("  Deposit: %d\n", s.RequiredDeposit)
		fmt.Printf("   Status: %s\n", reply.Status)
		fmt.Printf("    Votes: %d\n", len(s.Votes))
		fmt.Printf("   Shares: %d\n", len(s.Shares))

	case *argEvents != 0 || *argAll:
		id := uint32(*argEvents)
		if *argAll {
			id = 0
		}
		reply, err := client.GetEvents(id)
		if err != nil {
			log.Fatal("get events request: ", err)
		}
		for _, ev := range reply.Events {
			fmt.Printf("%6d %12d session=%d user=%d amount=%d %s\n",
				ev.Index, ev.When, ev.Session, ev.User, ev.Amount, ev.Topic)
		}

	default:
		// Link the service: set the authentication key and the admins.
		if *argAdmins == "" {
			log.Fatal("admin list (-admins) must have at least one id")
		}
		admins, err := parseAdmins(*argAdmins)
		if err != nil {
			log.Fatal("cannot parse admins: ", err)
		}
		if *argPin == "" {
			log.Fatal("pin must be set for link")
		}

		var pub kyber.Point
		if *argKey != "" {
			pub, err = parseKey(*argKey)
			if err != nil {
				log.Fatal("cannot parse key: ", err)
			}
		} else {
			kp := key.NewKeyPair(timevote.Suite)
			log.Infof("Auth-server private key: %v", kp.Private)
			pub = kp.Public
		}

		reply, err := client.Link(*argPin, pub, admins)
		if err != nil {
			log.Fatal("link request: ", err)
		}
		log.Infof("Auth-server public  key: %v", pub)
		log.Infof("Master handle: %s", reply.Master)
	}
}

// authenticate fills in the signing identity of the client from the -user,
// -priv and -master arguments.
func authenticate(client *timevote.Client) error {
	if *argUser == 0 || *argPriv == "" || *argMaster == "" {
		return fmt.Errorf("-user, -priv and -master are required for signed operations")
	}
	private, err := parseScalar(*argPriv)
	if err != nil {
		return fmt.Errorf("cannot parse private key: %v", err)
	}
	master, err := hex.DecodeString(*argMaster)
	if err != nil {
		return fmt.Errorf("cannot parse master handle: %v", err)
	}
	client.User = uint32(*argUser)
	client.Private = private
	client.Master = master
	return nil
}

// loadSession reads and sanity-checks a session definition toml file.
func loadSession(path string) (*sessionDef, error) {
	var def sessionDef
	if _, err := toml.DecodeFile(path, &def); err != nil {
		return nil, err
	}
	if def.Title == "" {
		return nil, fmt.Errorf("session definition needs a title")
	}
	if def.Start >= def.End || def.End >= def.SharesEnd {
		return nil, fmt.Errorf("deadlines must be ordered: start < end < shares-end")
	}
	return &def, nil
}

// parseRoster reads a group toml file and converts it to a roster.
func parseRoster(path string) (*onet.Roster, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	group, err := app.ReadGroupDescToml(file)
	if err != nil {
		return nil, err
	}
	return group.Roster, nil
}

// parseAdmins converts a string of comma-separated account ids in the format
// id1,id2,id3 to a list of integers.
func parseAdmins(ids string) ([]uint32, error) {
	if ids == "" {
		return nil, nil
	}

	admins := make([]uint32, 0)
	for _, admin := range strings.Split(ids, ",") {
		id, err := strconv.Atoi(admin)
		if err != nil {
			return nil, err
		}
		admins = append(admins, uint32(id))
	}
	return admins, nil
}

// parseMint splits an id:amount pair.
func parseMint(arg string) (uint32, uint64, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected id:amount, got %q", arg)
	}
	user, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	amount, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return uint32(user), amount, nil
}

// parseKey unmarshals an Ed25519 point given in hexadecimal form.
func parseKey(pub string) (kyber.Point, error) {
	b, err := hex.DecodeString(pub)
	if err != nil {
		return nil, err
	}

	point := timevote.Suite.Point()
	if err = point.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return point, nil
}

// parseScalar unmarshals an Ed25519 scalar given in hexadecimal form.
func parseScalar(priv string) (kyber.Scalar, error) {
	b, err := hex.DecodeString(priv)
	if err != nil {
		return nil, err
	}

	scalar := timevote.Suite.Scalar()
	if err = scalar.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return scalar, nil
}
