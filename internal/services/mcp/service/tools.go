package service

import (
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
	"github.com/louisbranch/dmscreen/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	playerToolsModuleName  = "player-tools"
	xpToolsModuleName      = "xp-tools"
	sessionToolsModuleName = "session-tools"
	attackToolsModuleName  = "attack-tools"
	encounterModuleName    = "encounter-tools"
	passiveModuleName      = "passive-tools"
)

type registrationModule struct {
	name     string
	register func(*mcp.Server)
}

func registrationModules(session domain.Session, printer *notice.Printer) []registrationModule {
	return []registrationModule{
		{
			name: playerToolsModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.PlayerAddTool(), domain.PlayerAddHandler(session, printer))
				mcp.AddTool(server, domain.PlayerListTool(), domain.PlayerListHandler(session, printer))
				mcp.AddTool(server, domain.PlayerRemoveTool(), domain.PlayerRemoveHandler(session, printer))
			},
		},
		{
			name: xpToolsModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.XPGrantTool(), domain.XPGrantHandler(session, printer))
				mcp.AddTool(server, domain.XPGrantAllTool(), domain.XPGrantAllHandler(session, printer))
				mcp.AddTool(server, domain.XPRevokeTool(), domain.XPRevokeHandler(session, printer))
			},
		},
		{
			name: sessionToolsModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.SessionResetRequestTool(), domain.SessionResetRequestHandler(session, printer))
				mcp.AddTool(server, domain.SessionResetConfirmTool(), domain.SessionResetConfirmHandler(session, printer))
				mcp.AddTool(server, domain.SessionResetCancelTool(), domain.SessionResetCancelHandler(session, printer))
			},
		},
		{
			name: attackToolsModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.AttackCreateTool(), domain.AttackCreateHandler(session, printer))
				mcp.AddTool(server, domain.AttackDuplicateTool(), domain.AttackDuplicateHandler(session, printer))
				mcp.AddTool(server, domain.AttackMoveTool(), domain.AttackMoveHandler(session, printer))
				mcp.AddTool(server, domain.AttackDeleteTool(), domain.AttackDeleteHandler(session, printer))
				mcp.AddTool(server, domain.AttackListTool(), domain.AttackListHandler(session, printer))
				mcp.AddTool(server, domain.AttackRollTool(), domain.AttackRollHandler(session, printer))
			},
		},
		{
			name: encounterModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.CharacterCreateTool(), domain.CharacterCreateHandler(session, printer))
				mcp.AddTool(server, domain.CharacterListTool(), domain.CharacterListHandler(session, printer))
				mcp.AddTool(server, domain.CharacterRemoveTool(), domain.CharacterRemoveHandler(session, printer))
				mcp.AddTool(server, domain.CharacterDamageTool(), domain.CharacterDamageHandler(session, printer))
				mcp.AddTool(server, domain.CharacterHealTool(), domain.CharacterHealHandler(session, printer))
				mcp.AddTool(server, domain.CharacterTempHPTool(), domain.CharacterTempHPHandler(session, printer))
				mcp.AddTool(server, domain.TurnStartTool(), domain.TurnStartHandler(session, printer))
				mcp.AddTool(server, domain.TurnEndTool(), domain.TurnEndHandler(session, printer))
			},
		},
		{
			name: passiveModuleName,
			register: func(server *mcp.Server) {
				mcp.AddTool(server, domain.PassiveAddTool(), domain.PassiveAddHandler(session, printer))
				mcp.AddTool(server, domain.PassiveListTool(), domain.PassiveListHandler(session, printer))
				mcp.AddTool(server, domain.PassiveApplyTool(), domain.PassiveApplyHandler(session, printer))
			},
		},
	}
}
