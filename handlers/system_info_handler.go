package handlers

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
	"modix/model"
	"modix/utils"
	"modix/utils/database"
)

func (h *handler) handleSystemInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !h.deferReply(s, i, false) {
		return
	}

	cpuCount, _ := cpu.CountsWithContext(ctx, true)
	var cpuUsage float64
	if percent, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percent) > 0 {
		cpuUsage = percent[0]
	}

	var memValue string
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		memValue = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	osValue, kernelValue, uptimeValue := "-", "-", "-"
	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		osValue = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernelValue = hostInfo.KernelVersion
		uptimeValue = (time.Duration(hostInfo.Uptime) * time.Second).String()
	}

	dbValue := "-"
	if size, err := database.Size(ctx, h.bot.DB); err == nil {
		dbValue = fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
	} else {
		h.log.Warn("failed to read database size", zap.Error(err))
	}

	active, err := h.bot.Moderation.CountActive(ctx, i.GuildID)
	if err != nil {
		h.log.Warn("failed to count active infractions", zap.Error(err))
	}

	embed := &discordgo.MessageEmbed{
		Title: "System information",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: osValue, Inline: true},
			{Name: "🔧 Kernel", Value: kernelValue, Inline: true},
			{Name: "⏳ Host uptime", Value: uptimeValue, Inline: true},
			{Name: "🐹 Go version", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "🧠 Memory", Value: valueOr(memValue, "-"), Inline: true},
			{Name: "🗃️ Database size", Value: dbValue, Inline: true},
			{Name: "⏱️ WebSocket latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🔇 Active mutes", Value: fmt.Sprintf("%d", active[model.InfractionMute]), Inline: true},
			{Name: "🔨 Active bans", Value: fmt.Sprintf("%d", active[model.InfractionBan]), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "System status · " + time.Now().Format("15:04"),
		},
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, embed)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
