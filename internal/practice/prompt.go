package practice

import (
	"fmt"
	"strings"
	"time"
)

// generationPrompt asks for one main and two alternate practices as a bare
// JSON object. The model tends to wrap output in code fences anyway, so the
// decoder strips them.
func generationPrompt(date time.Time) string {
	compact := strings.ReplaceAll(date.Format("2006-01-02"), "-", "")
	return fmt.Sprintf(`你是一位 AI 辅助编程专家。今天是 %s。请生成今日的「AI 编程最佳实践」推荐。

要求：
1. 生成 1 个主推荐和 2 个备选推荐
2. 每个推荐必须包含：
   - id: 唯一标识符（格式: practice-%s-序号）
   - title: 标题（15字以内）
   - summary: 简述（50字以内）
   - difficulty: 难度（beginner/intermediate/advanced）
   - estimatedMinutes: 预计时间（分钟数字）
   - steps: 实践步骤（3-5步的数组）
   - whyItMatters: 为何重要（50字以内）
   - sourceUrl: 参考来源 URL
   - sourceName: 来源名称
   - tools: 相关工具（数组）
   - tags: 标签（数组）
   - scenarioTags: 从 (debugging, refactoring, code-review, testing, documentation, learning, productivity, prompt-engineering) 选择（最多3个）

3. 内容应聚焦于：
   - AI 辅助编程工具使用技巧
   - Prompt Engineering 最佳实践
   - AI Code Review 方法
   - AI 辅助调试技巧
   - 生产力提升方法

请以 JSON 格式输出（不要包含 markdown 代码块标记）：
{
  "mainPractice": {...},
  "altPractices": [{...}, {...}]
}`, date.Format("2006-01-02"), compact)
}
