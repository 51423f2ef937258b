package web

// dashboardHTML is the embedded HTML/CSS/JS for the status dashboard.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>primechain Dashboard</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{background:#0d1117;color:#c9d1d9;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Helvetica,Arial,sans-serif;padding:24px;min-height:100vh}
h1{font-size:1.5rem;font-weight:600;color:#f0f6fc;margin-bottom:4px}
.subtitle{color:#8b949e;font-size:0.85rem;margin-bottom:24px}
.stats{display:grid;grid-template-columns:repeat(auto-fit,minmax(180px,1fr));gap:16px;margin-bottom:24px}
.card{background:#161b22;border:1px solid #30363d;border-radius:8px;padding:20px}
.card .label{color:#8b949e;font-size:0.75rem;text-transform:uppercase;letter-spacing:0.5px;margin-bottom:8px}
.card .value{font-size:1.75rem;font-weight:700;color:#f0f6fc;font-family:"SF Mono",SFMono-Regular,Consolas,"Liberation Mono",Menlo,monospace}
.card .value.accent{color:#58a6ff}
.info{display:grid;grid-template-columns:repeat(auto-fit,minmax(200px,1fr));gap:8px;margin-top:12px}
.info-item{font-size:0.75rem;color:#8b949e}
.info-item span{color:#c9d1d9}
.dot{display:inline-block;width:8px;height:8px;border-radius:50%;background:#3fb950;margin-right:6px;animation:pulse 2s infinite}
@keyframes pulse{0%,100%{opacity:1}50%{opacity:0.4}}
</style>
</head>
<body>
<h1><span class="dot"></span>Proof-of-Prime Blockchain Node</h1>
<div class="subtitle">probable-prime mining engine</div>
<div class="stats">
<div class="card"><div class="label">Chain Height</div><div class="value" id="height">-</div></div>
<div class="card"><div class="label">Tip Prime</div><div class="value accent" id="tip-prime">-</div></div>
<div class="card"><div class="label">Rounds Mined</div><div class="value" id="rounds">-</div></div>
<div class="card"><div class="label">Candidates Tested</div><div class="value" id="candidates">-</div></div>
</div>
<div class="card">
<div class="label">Difficulty</div>
<div class="info">
<div class="info-item">n_limit: <span id="n-limit">-</span></div>
<div class="info-item">min_digits: <span id="min-digits">-</span></div>
<div class="info-item">min_prob: <span id="min-prob">-</span></div>
<div class="info-item">target: <span id="target">-</span>s/round</div>
<div class="info-item">workers: <span id="workers">-</span></div>
<div class="info-item">uptime: <span id="uptime">-</span></div>
</div>
</div>
<script>
function fmtUptime(s){
  if(s<3600)return Math.floor(s/60)+'m';
  if(s<86400)return Math.floor(s/3600)+'h '+Math.floor(s%3600/60)+'m';
  return Math.floor(s/86400)+'d '+Math.floor(s%86400/3600)+'h';
}
async function refresh(){
  try{
    const r=await fetch('/api/status');
    const d=await r.json();
    document.getElementById('height').textContent=d.height;
    document.getElementById('tip-prime').textContent=d.tip_prime;
    document.getElementById('rounds').textContent=d.rounds;
    document.getElementById('candidates').textContent=d.candidates_total;
    document.getElementById('n-limit').textContent=d.n_limit;
    document.getElementById('min-digits').textContent=d.min_digits;
    document.getElementById('min-prob').textContent=d.min_prob.toFixed(4);
    document.getElementById('target').textContent=d.target_time_secs;
    document.getElementById('workers').textContent=d.workers;
    document.getElementById('uptime').textContent=fmtUptime(d.uptime_secs);
  }catch(e){}
}
refresh();
setInterval(refresh,2000);
</script>
</body>
</html>
`
