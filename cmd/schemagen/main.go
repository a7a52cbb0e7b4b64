// Command schemagen emits JSON Schema for the wire payload types, for
// client codegen and protocol review.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"arena/protocol"
)

func main() {
	payloads := map[string]any{
		protocol.MsgConnect:             protocol.Connect{},
		protocol.MsgDisconnect:          protocol.ConnectionStatus{},
		protocol.MsgMessage:             protocol.Message{},
		protocol.MsgClearPlayers:        protocol.ClearPlayers{},
		protocol.MsgSyncDirection:       protocol.Direction{},
		protocol.MsgSyncPosition:        protocol.Position{},
		protocol.MsgSyncPlayerDirection: protocol.PlayerDirection{},
		protocol.MsgShoot:               protocol.ProjectileSpawn{},
		protocol.MsgCreateRoom:          protocol.CreateRoom{},
		protocol.MsgJoinRoom:            protocol.JoinRoom{},
		protocol.MsgGetRooms:            protocol.RoomList{},
		protocol.MsgSyncDimensions:      protocol.Dimensions{},
		protocol.MsgAssignID:            protocol.AssignID{},
		protocol.MsgSetTeamInfo:         protocol.TeamInfo{},
		protocol.MsgGameStarted:         protocol.GameStarted{},
		protocol.MsgSetActivity:         protocol.Activity{},
		protocol.MsgGameState:           protocol.GameStatus{},
		protocol.MsgTimer:               protocol.Timer{},
		protocol.MsgSyncHP:              protocol.Health{},
		protocol.MsgSyncScores:          protocol.Scores{},
	}

	out := make(map[string]*jsonschema.Schema, len(payloads))
	r := new(jsonschema.Reflector)
	for t, p := range payloads {
		out[t] = r.Reflect(p)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "schemagen:", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
